// Package rescue is the deterministic gap-filler behind the probabilistic
// extractor: it scans the raw recognition text for contact patterns the
// model missed. It never overwrites a field the extractor populated.
package rescue

import (
	"regexp"
	"strings"

	"github.com/Prishashn/Hrextractor/internal/entity"
)

var (
	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	rePhone = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)
)

// Apply fills missing email/phone from rawText, first match in text order.
// Fields the extractor already populated are left untouched even when the
// text contains a different valid pattern.
func Apply(candidate entity.ProfileFields, rawText string) entity.ProfileFields {
	out := candidate

	if out.Email == "" {
		if m := reEmail.FindString(rawText); m != "" {
			out.Email = m
		}
	}
	if out.Phone == "" {
		if m := rePhone.FindString(rawText); m != "" {
			out.Phone = strings.TrimSpace(m)
		}
	}

	return out
}
