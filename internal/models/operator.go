package models

import (
	"regexp"
	"sort"
	"strings"
)

// Canonical operator identifiers.
const (
	OperatorJio    = "jio"
	OperatorAirtel = "airtel"
	OperatorVi     = "vi"
)

// KnownOperators lists the canonical operators in display order.
var KnownOperators = []string{OperatorJio, OperatorAirtel, OperatorVi}

// OperatorCorrections maps common misspellings and brand names to a canonical operator.
var OperatorCorrections = map[string]string{
	"geo":           OperatorJio,
	"artel":         OperatorAirtel,
	"vodafone idea": OperatorVi,
	"vodafone":      OperatorVi,
	"vodaphone":     OperatorVi,
	"idea":          OperatorVi,
}

// containment checks run in this order so results are deterministic.
var operatorSubstrings = []struct {
	needle   string
	operator string
}{
	{"jio", OperatorJio},
	{"geo", OperatorJio},
	{"airtel", OperatorAirtel},
	{"artel", OperatorAirtel},
	{"vodafone", OperatorVi},
	{"vodaphone", OperatorVi},
	{"idea", OperatorVi},
}

// viWord matches "vi" as a standalone word ("Vi India", "vi prepaid") but not
// inside words such as "movie".
var viWord = regexp.MustCompile(`\bvi\b`)

// IsKnownOperator reports whether s is already a canonical operator name.
func IsKnownOperator(s string) bool {
	for _, op := range KnownOperators {
		if s == op {
			return true
		}
	}
	return false
}

// CorrectOperator resolves free text to a canonical operator.
// extra holds additional aliases (lower-case) consulted before the built-in table.
// Canonical names are returned unchanged.
func CorrectOperator(text string, extra map[string]string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return "", false
	}
	if IsKnownOperator(s) {
		return s, true
	}
	if op, ok := extra[s]; ok {
		return op, true
	}
	if op, ok := OperatorCorrections[s]; ok {
		return op, true
	}
	aliases := make([]string, 0, len(extra))
	for alias := range extra {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		if alias != "" && strings.Contains(s, alias) {
			return extra[alias], true
		}
	}
	for _, c := range operatorSubstrings {
		if strings.Contains(s, c.needle) {
			return c.operator, true
		}
	}
	if viWord.MatchString(s) {
		return OperatorVi, true
	}
	return "", false
}
