// Package format renders the final record into the fixed reply template.
package format

import (
	"strings"

	"github.com/Prishashn/Hrextractor/constants"
	"github.com/Prishashn/Hrextractor/internal/entity"
)

// Reply renders the six fields into the labeled template. Pure and total:
// a field the pipeline could not determine renders as the sentinel, so the
// output always carries all six lines.
func Reply(f entity.ProfileFields) string {
	var b strings.Builder
	b.WriteString("📌 Extracted Profile\n\n")
	b.WriteString("👤 Name: " + orSentinel(f.Name) + "\n")
	b.WriteString("💼 Profession: " + orSentinel(f.Profession) + "\n")
	b.WriteString("🏢 Company: " + orSentinel(f.CurrentCompany) + "\n")
	b.WriteString("📍 Location: " + orSentinel(f.CurrentLocation) + "\n")
	b.WriteString("📧 Email: " + orSentinel(f.Email) + "\n")
	b.WriteString("📞 Phone: " + orSentinel(f.Phone))
	return b.String()
}

func orSentinel(v string) string {
	if strings.TrimSpace(v) == "" {
		return constants.Sentinel
	}
	return v
}
