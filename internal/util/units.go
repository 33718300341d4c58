package util

import (
	"regexp"
	"strings"
)

// space covers unicode.IsSpace and the Z separator classes, including thin
// and narrow no-break spaces.
const space = `[\s\v\p{Z}\x{1c}-\x{1f}\x{85}]`

var valueWithUnitPattern = regexp.MustCompile(
	`^` + space + `*[-+]?\p{Nd}+(?:\.\p{Nd}+)?(?:[eE][-+]?\p{Nd}+)?` + space + `+(.+?)` + space + `*$`,
)

// ExtractUnits returns the unit text that follows the leading number of a
// value field, e.g. "23.1 °C" -> "°C", "0.0 L/s" -> "L/s", "10 %" -> "%".
// Values without a numeric prefix or without trailing text yield "".
func ExtractUnits(value string) string {
	s := strings.Trim(strings.TrimSpace(value), `"`)
	s = strings.ReplaceAll(s, "'", "")
	s = NormalizeMojibake(s)

	m := valueWithUnitPattern.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	// the numeric split can leave half of a mojibake pair on the unit side
	return NormalizeMojibake(m[1])
}
