package lexer

import "strings"

// SingularizeAndCapitalize converts a (possibly plural, possibly
// snake_case) collection key to a singular PascalCase type name. Codecs use
// it when importing formats whose collection keys are pluralized: "users"
// becomes "User", "alias_contexts" becomes "AliasContext". The plural
// handling is a heuristic, not full English grammar.
func SingularizeAndCapitalize(s string) string {
	var singular string
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 3:
		// categories -> category
		singular = s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "es") && len(s) > 2:
		base := s[:len(s)-2]
		if strings.HasSuffix(base, "ss") || strings.HasSuffix(base, "sh") ||
			strings.HasSuffix(base, "ch") || strings.HasSuffix(base, "x") {
			// boxes -> box, classes -> class
			singular = base
		} else {
			// types -> type
			singular = s[:len(s)-1]
		}
	case strings.HasSuffix(s, "s") && len(s) > 1:
		// users -> user
		singular = s[:len(s)-1]
	default:
		singular = s
	}

	var sb strings.Builder
	for _, part := range strings.Split(singular, "_") {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}
