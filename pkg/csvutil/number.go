package csvutil

import "strings"

var numberNoise = strings.NewReplacer(
	"\u00a5", "",
	"\uffe5", "",
	"$", "",
	",", "",
	"\uff0c", "",
)

// ParseNum reads the integer prefix of a spreadsheet number cell such as
// "¥1,200" or " 3 ". Currency symbols, thousands separators and whitespace are
// ignored. Empty or non-numeric input yields 0.
func ParseNum(s string) int64 {
	s = numberNoise.Replace(s)
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	var n int64
	digits := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int64(ch-'0')
		digits++
	}
	if digits == 0 {
		return 0
	}
	if neg {
		return -n
	}
	return n
}
