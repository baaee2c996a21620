package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/Prishashn/Hrextractor/constants"

	"github.com/Prishashn/Hrextractor/internal/entity"
)

// NormalizeProfileJSON
// - Renames known synonyms (company -> current_company, location -> current_location, ...)
// - Trims string values; drops null / non-string values
// - Removes unknown keys (strict additionalProperties = false friendliness)
// - Fills absent fields with the sentinel so the document validates
func NormalizeProfileJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms the model sometimes produces
	renamed("full_name", "name")
	renamed("title", "profession")
	renamed("job_title", "profession")
	renamed("company", "current_company")
	renamed("employer", "current_company")
	renamed("location", "current_location")
	renamed("city", "current_location")
	renamed("email_address", "email")
	renamed("phone_number", "phone")

	// 2) trim strings; drop null and unexpected types
	for k, v := range maps.Clone(m) {
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	// 3) remove unknown keys
	allowed := make(map[string]struct{}, len(constants.ProfileFieldKeys))
	for _, k := range constants.ProfileFieldKeys {
		allowed[k] = struct{}{}
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 4) absent fields become the sentinel so required keys validate
	for _, k := range constants.ProfileFieldKeys {
		if _, ok := m[k]; !ok {
			m[k] = constants.Sentinel
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// FoldSentinel maps sentinel-valued fields to the internal "missing"
// representation (empty string). Only the formatter renders the sentinel.
func FoldSentinel(f entity.ProfileFields) entity.ProfileFields {
	fold := func(s string) string {
		if strings.EqualFold(strings.TrimSpace(s), constants.Sentinel) {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return entity.ProfileFields{
		Name:            fold(f.Name),
		Profession:      fold(f.Profession),
		CurrentCompany:  fold(f.CurrentCompany),
		CurrentLocation: fold(f.CurrentLocation),
		Email:           fold(f.Email),
		Phone:           fold(f.Phone),
	}
}
