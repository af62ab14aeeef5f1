// Package units converts the free-text quantities found in plan catalogs and
// user queries (validity periods, data allowances) into comparable numbers.
package units

import (
	"regexp"
	"strconv"
	"strings"
)

// MonthAliases are billing-cycle phrases that map to an exact day count.
// They take precedence over the generic unit table.
var MonthAliases = map[string]int{
	"1 month":      28,
	"one month":    28,
	"a month":      28,
	"2 month":      56,
	"two month":    56,
	"2 months":     56,
	"two months":   56,
	"3 month":      84,
	"three month":  84,
	"3 months":     84,
	"three months": 84,
}

// DaysPerUnit is consulted in order; the first unit found in the phrase wins.
var DaysPerUnit = []struct {
	Unit string
	Days int
}{
	{"month", 30},
	{"week", 7},
	{"year", 365},
	{"day", 1},
}

var numberPattern = regexp.MustCompile(`\d+`)

// ParseValidity turns phrases like "2 months", "45 days" or "10" into a day count.
func ParseValidity(text string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, false
	}
	if days, ok := MonthAliases[s]; ok {
		return days, true
	}

	n, found := firstNumber(s)
	for _, u := range DaysPerUnit {
		if strings.Contains(s, u.Unit) {
			if !found {
				return 0, false
			}
			return n * u.Days, true
		}
	}
	return n, found
}

func firstNumber(s string) (int, bool) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
