package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"plangenie/internal/llm"
	"plangenie/internal/models"
	"plangenie/internal/units"
)

type extraction struct {
	Operator json.RawMessage `json:"operator"`
	Budget   json.RawMessage `json:"budget"`
	Validity json.RawMessage `json:"validity"`
	Type     json.RawMessage `json:"type"`
	Features json.RawMessage `json:"features"`
}

// ParseExtraction decodes the model's text output and normalizes every field.
func ParseExtraction(output string, aliases map[string]string) (models.Filter, error) {
	obj := llm.ExtractJSONObject(output)
	if obj == "" {
		return models.Filter{}, ErrExtractionMalformed
	}

	var ex extraction
	if err := json.Unmarshal([]byte(obj), &ex); err != nil {
		return models.Filter{}, fmt.Errorf("%w: %v", ErrExtractionMalformed, err)
	}

	return models.Filter{
		Operator: normalizeOperator(scalarText(ex.Operator), aliases),
		Budget:   normalizeBudget(ex.Budget),
		Validity: normalizeValidity(scalarText(ex.Validity)),
		Type:     normalizeType(scalarText(ex.Type)),
		Features: normalizeFeatures(ex.Features),
	}, nil
}

var placeholders = map[string]bool{"": true, "null": true, "none": true, "any": true, "n/a": true}

func normalizeOperator(s string, aliases map[string]string) *string {
	lower := strings.ToLower(strings.TrimSpace(s))
	if placeholders[lower] {
		return nil
	}
	if op, ok := models.CorrectOperator(lower, aliases); ok {
		return &op
	}
	return &lower
}

var budgetPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(k\b)?`)

func normalizeBudget(raw json.RawMessage) *float64 {
	s := strings.ReplaceAll(scalarText(raw), ",", "")
	m := budgetPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return nil
	}
	if m[2] != "" {
		v *= 1000
	}
	return &v
}

func normalizeValidity(s string) *int {
	days, ok := units.ParseValidity(s)
	if !ok || days <= 0 {
		return nil
	}
	return &days
}

func normalizeType(s string) *string {
	lower := strings.ToLower(strings.TrimSpace(s))
	if placeholders[lower] {
		return nil
	}
	return &lower
}

func normalizeFeatures(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	var items []string
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil
		}
		for _, it := range list {
			items = append(items, scalarText(it))
		}
	} else {
		items = strings.Split(scalarText(trimmed), ",")
	}

	var out []string
	for _, it := range items {
		token := strings.ToLower(strings.TrimSpace(it))
		if !placeholders[token] {
			out = append(out, token)
		}
	}
	return out
}

// scalarText returns a JSON string unquoted, a number verbatim, and "" for
// null, objects and arrays.
func scalarText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n', 't', 'f':
		return ""
	default:
		return string(trimmed)
	}
}
