package pipeline

import (
	"regexp"
	"strings"

	"github.com/locojk/CSV-converter/internal"
)

var (
	objectTokenPattern  = regexp.MustCompile(`^([A-Za-z]+)(\p{Nd}+)$`)
	deviceNumberPattern = regexp.MustCompile(`[\\/](\p{Nd}+)\.`)
)

// LastSegment returns the trimmed text after the final dot of a path-like
// reference, or the whole trimmed reference when it has no dot.
func LastSegment(ref string) string {
	if idx := strings.LastIndex(ref, "."); idx >= 0 {
		return strings.TrimSpace(ref[idx+1:])
	}
	return strings.TrimSpace(ref)
}

// ParseObjectToken splits "AV28" into type "AV" and number "28". Tokens of any
// other shape come back as a raw token so the text is not lost.
func ParseObjectToken(token string) internal.ObjectToken {
	trimmed := strings.TrimSpace(token)
	m := objectTokenPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return internal.RawToken(trimmed)
	}
	return internal.ParsedToken(strings.ToUpper(m[1]), m[2])
}

// ExtractDeviceNumber returns the first run of decimal digits (any script) that sits between a
// slash or backslash and a dot, e.g. "//Morisset/10409.AV28" -> "10409".
// It must be given the full reference, not its last segment.
func ExtractDeviceNumber(ref string) string {
	m := deviceNumberPattern.FindStringSubmatch(ref)
	if m == nil {
		return ""
	}
	return m[1]
}
