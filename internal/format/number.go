package format

import (
	"strconv"
	"strings"
)

// FormatNumberString inserts thousands separators into a decimal integer
// string. A leading minus sign is preserved.
func FormatNumberString(s string) string {
	if s == "" {
		return s
	}
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(len(sign) + len(s) + len(s)/3)
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatInt formats n with thousands separators.
func FormatInt(n int64) string {
	return FormatNumberString(strconv.FormatInt(n, 10))
}
