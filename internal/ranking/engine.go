// Package ranking filters, sorts and paginates normalized plans.
package ranking

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"plangenie/internal/models"
	"plangenie/internal/units"
)

// Feature tokens with extra semantics beyond substring matching.
const (
	FeatureVoiceOnly = "voice only"
	FeatureDataOnly  = "data only"
)

var voicePattern = regexp.MustCompile(`(?i)voice|call`)

// Result is one page of ranked plans.
type Result struct {
	Total int
	Page  []models.Plan
}

// Apply narrows plans by every non-nil filter field, sorts ascending by price
// (stable) and returns the [offset, offset+pageSize) slice. Plans without a
// numeric price are never ranked. The input slice is not modified.
func Apply(plans []models.Plan, f models.Filter, offset, pageSize int) Result {
	matched := make([]models.Plan, 0, len(plans))
	var budget decimal.Decimal
	if f.Budget != nil {
		budget = decimal.NewFromFloat(*f.Budget)
	}

	for i := range plans {
		p := &plans[i]
		if !p.PriceKnown {
			continue
		}
		if f.Operator != nil && p.Operator != *f.Operator {
			continue
		}
		if f.Type != nil && !strings.EqualFold(p.Type, *f.Type) {
			continue
		}
		if f.Budget != nil && p.Price.GreaterThan(budget) {
			continue
		}
		if f.Validity != nil && (p.ValidityDays <= 0 || p.ValidityDays < *f.Validity) {
			continue
		}
		if len(f.Features) > 0 && !matchesFeatures(p, f) {
			continue
		}
		matched = append(matched, *p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Price.LessThan(matched[j].Price)
	})

	return Result{Total: len(matched), Page: page(matched, offset, pageSize)}
}

func matchesFeatures(p *models.Plan, f models.Filter) bool {
	text := p.FeatureText()
	for _, token := range f.Features {
		if !strings.Contains(text, strings.ToLower(token)) {
			return false
		}
	}

	if f.HasFeature(FeatureVoiceOnly) {
		data := p.DataAllowance()
		if !data.Absent && !(data.Known && data.GB < units.VoiceOnlyThresholdGB) {
			return false
		}
	}
	if f.HasFeature(FeatureDataOnly) {
		data := p.DataAllowance()
		if !data.Known || data.GB <= 0 || voicePattern.MatchString(text) {
			return false
		}
	}
	return true
}

func page(plans []models.Plan, offset, size int) []models.Plan {
	if offset < 0 {
		offset = 0
	}
	if size <= 0 || offset >= len(plans) {
		return []models.Plan{}
	}
	end := offset + size
	if end > len(plans) {
		end = len(plans)
	}
	return plans[offset:end]
}
