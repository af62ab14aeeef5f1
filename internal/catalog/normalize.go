package catalog

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"plangenie/internal/models"
	"plangenie/internal/units"
)

// Flatten walks the provider → category → (plans | groups) tree depth first and
// returns one record per leaf plan tagged with its operator and category.
// Only the prepaid and postpaid categories are read; any other category key
// is skipped. Map keys are visited in sorted order so the output is deterministic.
func Flatten(raw *models.RawCatalog) []models.Plan {
	if raw == nil {
		return nil
	}

	var out []models.Plan
	for _, provider := range sortedKeys(raw.Providers) {
		operator := normalizeOperator(provider)
		categories := raw.Providers[provider].Plans
		for _, category := range sortedKeys(categories) {
			planType := strings.ToLower(strings.TrimSpace(category))
			if !models.IsPlanType(planType) {
				continue
			}
			out = walk(out, categories[category], operator, planType, "")
		}
	}
	return out
}

func walk(out []models.Plan, node *models.CatalogNode, operator, planType, group string) []models.Plan {
	if node == nil {
		return out
	}
	for _, rp := range node.Leaf {
		out = append(out, toPlan(rp, operator, planType, group))
	}
	for _, name := range sortedKeys(node.Group) {
		sub := name
		if group != "" {
			sub = group + "/" + name
		}
		out = walk(out, node.Group[name], operator, planType, sub)
	}
	return out
}

func toPlan(rp models.RawPlan, operator, planType, group string) models.Plan {
	p := models.Plan{
		Operator:           operator,
		Type:               planType,
		Group:              group,
		Data:               strings.TrimSpace(string(rp.Data)),
		Benefits:           strings.TrimSpace(string(rp.Benefits)),
		AdditionalBenefits: strings.TrimSpace(string(rp.AdditionalBenefits)),
		Description:        strings.TrimSpace(string(rp.Description)),
	}
	p.Price, p.PriceKnown = parsePrice(rp.Price)
	p.Validity, p.ValidityDays = parseValidity(rp.Validity)
	return p
}

func normalizeOperator(key string) string {
	if op, ok := models.CorrectOperator(key, nil); ok {
		return op
	}
	return strings.ToLower(strings.TrimSpace(key))
}

var priceReplacer = strings.NewReplacer("₹", "", "/-", "", "rs.", "", "rs", "", "inr", "", ",", "", " ", "")

func parsePrice(raw json.RawMessage) (decimal.Decimal, bool) {
	s := rawText(raw)
	if s == "" {
		return decimal.Zero, false
	}
	s = priceReplacer.Replace(strings.ToLower(s))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseValidity(raw json.RawMessage) (string, int) {
	s := rawText(raw)
	if s == "" {
		return "", 0
	}
	days, ok := units.ParseValidity(s)
	if !ok {
		return s, 0
	}
	return s, days
}

// rawText returns a JSON scalar as plain text: strings are unquoted, numbers kept verbatim.
func rawText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return string(trimmed)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
