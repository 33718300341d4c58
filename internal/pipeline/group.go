package pipeline

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/locojk/CSV-converter/internal"
)

// GroupRows buckets rows by device number. Rows without one share a single
// group keyed by the stem of the source file name. Groups keep the order in
// which their key first appeared and their rows are sorted with SortRows.
func GroupRows(rows []internal.NormalizedRow, source string) []internal.DeviceGroup {
	fallback := SourceStem(source)

	index := map[string]int{}
	groups := []internal.DeviceGroup{}
	for _, row := range rows {
		key := row.DeviceNumber
		if key == "" {
			key = fallback
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, internal.DeviceGroup{Key: key, Source: source})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	for i := range groups {
		SortRows(groups[i].Rows)
	}
	return groups
}

// SortRows orders rows in place by object type, then by object number read
// as an integer of any size. Numbers that do not parse count as 0. The sort
// is stable.
func SortRows(rows []internal.NormalizedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := strings.ToUpper(rows[i].ObjectType), strings.ToUpper(rows[j].ObjectType)
		if ti != tj {
			return ti < tj
		}
		return parseObjectNumber(rows[i].ObjectNumber).less(parseObjectNumber(rows[j].ObjectNumber))
	})
}

// objectNumber is an arbitrary-precision integer kept as its decimal digits
// without leading zeros. Zero has no digits and is never negative.
type objectNumber struct {
	neg    bool
	digits string
}

func (a objectNumber) less(b objectNumber) bool {
	if a.neg != b.neg {
		return a.neg
	}
	if a.neg {
		return compareMagnitude(b.digits, a.digits) < 0
	}
	return compareMagnitude(a.digits, b.digits) < 0
}

func compareMagnitude(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// parseObjectNumber accepts surrounding whitespace, one sign, decimal digits
// of any script and single underscores between digits. Anything else is 0.
func parseObjectNumber(s string) objectNumber {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return objectNumber{}
	}

	var b strings.Builder
	prevDigit := false
	for _, r := range s {
		if r == '_' {
			if !prevDigit {
				return objectNumber{}
			}
			prevDigit = false
			continue
		}
		d := digitValue(r)
		if d < 0 {
			return objectNumber{}
		}
		b.WriteByte(byte('0' + d))
		prevDigit = true
	}
	if !prevDigit {
		return objectNumber{}
	}

	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		return objectNumber{}
	}
	return objectNumber{neg: neg, digits: digits}
}

// digitValue is the value of a Unicode decimal digit, or -1. Nd digits come
// in contiguous runs that start at zero.
func digitValue(r rune) int {
	if r >= '0' && r <= '9' {
		return int(r - '0')
	}
	if !unicode.IsDigit(r) {
		return -1
	}
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return int(r-start) % 10
}

// SourceStem is the file name of path without directory and extension.
func SourceStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
