package validate

import "strings"

// SanitizeString trims v and strips angle brackets. Non-string input yields "".
// It is not an HTML sanitizer; it only removes the characters that open and
// close markup.
func SanitizeString(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case *string:
		if t == nil {
			return ""
		}
		s = *t
	default:
		return ""
	}
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(s))
}
