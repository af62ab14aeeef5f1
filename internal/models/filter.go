package models

import (
	"strconv"
	"strings"
)

// Filter is structured user intent. A nil field means "no constraint".
type Filter struct {
	Operator *string  `json:"operator"`
	Budget   *float64 `json:"budget"`
	Validity *int     `json:"validity"`
	Type     *string  `json:"type"`
	Features []string `json:"features"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return f.Operator == nil && f.Budget == nil && f.Validity == nil && f.Type == nil && len(f.Features) == 0
}

// HasFeature reports whether token is one of the filter's features.
func (f Filter) HasFeature(token string) bool {
	for _, ft := range f.Features {
		if ft == token {
			return true
		}
	}
	return false
}

// Describe renders the supplied constraints for human-facing text, e.g.
// "jio prepaid plans under ₹300 with at least 28 days validity".
func (f Filter) Describe() string {
	var b strings.Builder
	if f.Operator != nil && *f.Operator != "" {
		b.WriteString(*f.Operator)
		b.WriteString(" ")
	}
	if f.Type != nil && *f.Type != "" {
		b.WriteString(*f.Type)
		b.WriteString(" ")
	}
	b.WriteString("plans")
	if f.Budget != nil {
		b.WriteString(" under ₹")
		b.WriteString(strconv.FormatFloat(*f.Budget, 'f', -1, 64))
	}
	if f.Validity != nil {
		b.WriteString(" with at least ")
		b.WriteString(strconv.Itoa(*f.Validity))
		b.WriteString(" days validity")
	}
	return b.String()
}
