package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"plangenie/internal/units"
)

// Plan categories read from the catalog.
const (
	PlanTypePrepaid  = "prepaid"
	PlanTypePostpaid = "postpaid"
)

// IsPlanType reports whether s is a catalog category that holds plans.
func IsPlanType(s string) bool {
	return s == PlanTypePrepaid || s == PlanTypePostpaid
}

// Plan is one normalized recharge plan.
type Plan struct {
	Operator           string          `json:"operator"`
	Type               string          `json:"type"`
	Group              string          `json:"group,omitempty"`
	Price              decimal.Decimal `json:"price"`
	PriceKnown         bool            `json:"-"`
	Validity           string          `json:"validity,omitempty"`
	ValidityDays       int             `json:"validityDays"`
	Data               string          `json:"data,omitempty"`
	Benefits           string          `json:"benefits,omitempty"`
	AdditionalBenefits string          `json:"additional_benefits,omitempty"`
	Description        string          `json:"description,omitempty"`
}

// FeatureText returns the lower-cased concatenation of the plan's free-text fields.
func (p *Plan) FeatureText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Benefits, p.AdditionalBenefits, p.Description} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// DataAllowance parses the plan's data string on demand.
func (p *Plan) DataAllowance() units.DataAllowance {
	return units.ParseDataAllowance(p.Data)
}
