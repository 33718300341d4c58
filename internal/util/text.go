package util

import "strings"

var (
	spaceRepl  = strings.NewReplacer("\u00a0", " ", "\u200b", "")
	degreeRepl = strings.NewReplacer("Â°", "°")
	replRepl   = strings.NewReplacer("\ufffdC", "°C", "\ufffdF", "°F")
)

// NormalizeMojibake repairs the usual artifacts of UTF-8 text read back as
// Latin-1/cp1252: NBSP and zero-width spaces, "Â°" for the degree sign,
// replacement characters in front of C/F, and stray "Â" lead bytes.
// The steps run in that order; each one sees the output of the previous.
func NormalizeMojibake(input string) string {
	if input == "" {
		return ""
	}
	s := spaceRepl.Replace(input)
	s = degreeRepl.Replace(s)
	s = replRepl.Replace(s)
	s = strings.ReplaceAll(s, "Â", "")
	// dropping a lead byte can expose a new "\ufffdC" pair
	return replRepl.Replace(s)
}

// NormalizeText applies NormalizeMojibake, collapses whitespace runs to a
// single space and trims the result. Whitespace is anything unicode.IsSpace
// accepts.
func NormalizeText(input string) string {
	return strings.Join(strings.Fields(NormalizeMojibake(input)), " ")
}
