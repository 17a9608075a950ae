// Package numbering formats 1-based indices as numeric, roman or alphabetic labels.
package numbering

import (
	"strconv"
	"strings"
)

// Style is the display format applied to a group's question and sub-question indices.
type Style string

const (
	StyleNumeric    Style = "numeric"
	StyleRoman      Style = "roman"
	StyleAlphabetic Style = "alphabetic"
)

// Valid reports whether s is one of the known styles.
func (s Style) Valid() bool {
	switch s {
	case StyleNumeric, StyleRoman, StyleAlphabetic:
		return true
	}
	return false
}

// ParseStyle maps raw to a Style. Empty or unknown input yields StyleNumeric.
func ParseStyle(raw string) Style {
	s := Style(strings.ToLower(strings.TrimSpace(raw)))
	if s.Valid() {
		return s
	}
	return StyleNumeric
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Format renders n in the given style. Indices are 1-based; n < 1 yields "".
// Unknown styles render as numeric.
func Format(n int, style Style) string {
	if n < 1 {
		return ""
	}
	switch style {
	case StyleRoman:
		return Roman(n)
	case StyleAlphabetic:
		return Alphabetic(n)
	default:
		return strconv.Itoa(n)
	}
}

// Roman returns the uppercase subtractive-notation numeral for n.
func Roman(n int) string {
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}

// Alphabetic returns the bijective base-26 label for n (1→A, 26→Z, 27→AA).
func Alphabetic(n int) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
