package geocoding

import "strings"

// formatAddress builds a short postal style address from the structured
// response, falling back to the full display name.
func formatAddress(loc *nominatimLocation) string {
	a := loc.Address
	street := strings.TrimSpace(strings.Join(nonEmpty(a.Road, a.HouseNumber), " "))
	locality := strings.TrimSpace(strings.Join(nonEmpty(a.Postcode, firstNonEmpty(a.City, a.Town, a.Village)), " "))

	parts := nonEmpty(street, locality, a.Country)
	if len(parts) < 2 {
		return strings.TrimSpace(loc.DisplayName)
	}
	return strings.Join(parts, ", ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
