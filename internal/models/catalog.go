package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RawCatalog is the remote plan document as published by the catalog source.
type RawCatalog struct {
	Providers map[string]RawProvider `json:"telecom_providers"`
}

// RawProvider holds one operator's plan categories (e.g. prepaid, postpaid).
type RawProvider struct {
	Plans map[string]*CatalogNode `json:"plans"`
}

// CatalogNode is either a list of plans (Leaf) or a further named grouping (Group).
// Exactly one of the two is set after decoding.
type CatalogNode struct {
	Leaf  []RawPlan
	Group map[string]*CatalogNode
}

// UnmarshalJSON decodes an array into Leaf and an object into Group.
func (n *CatalogNode) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '[':
		return json.Unmarshal(trimmed, &n.Leaf)
	case '{':
		return json.Unmarshal(trimmed, &n.Group)
	default:
		return fmt.Errorf("catalog node: expected array or object, got %q", trimmed[:1])
	}
}

// MarshalJSON writes the node back in the same shape it was read.
func (n CatalogNode) MarshalJSON() ([]byte, error) {
	if n.Group != nil {
		return json.Marshal(n.Group)
	}
	if n.Leaf == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(n.Leaf)
}

// RawPlan is a single plan as it appears in the catalog. Price and validity are
// kept raw because publishers mix numbers and strings.
type RawPlan struct {
	Price              json.RawMessage `json:"price"`
	Validity           json.RawMessage `json:"validity"`
	Data               FlexText        `json:"data"`
	Benefits           FlexText        `json:"benefits"`
	AdditionalBenefits FlexText        `json:"additional_benefits"`
	Description        FlexText        `json:"description"`
}

// FlexText accepts a JSON string, number, boolean or array of those and keeps a
// single comma-separated string.
type FlexText string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexText(s)
	case '[':
		var items []FlexText
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				parts = append(parts, string(it))
			}
		}
		*f = FlexText(strings.Join(parts, ", "))
	case '{':
		return fmt.Errorf("flex text: objects are not supported")
	default:
		*f = FlexText(trimmed)
	}
	return nil
}
