package settings

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RuleKind tags the closed set of seller shipping rules.
type RuleKind string

const (
	RuleNone      RuleKind = "none"
	RuleFlatRate  RuleKind = "flat_rate"
	RulePerItem   RuleKind = "per_item"
	RuleThreshold RuleKind = "free_shipping_threshold"
)

// ShippingRule is the validated form of a seller's shipping_rules blob.
//
// Cost is meaningful for flat_rate and per_item; Threshold for
// free_shipping_threshold. Anything else is RuleNone, which defers to the
// platform default shipping cost.
type ShippingRule struct {
	Kind      RuleKind
	Cost      decimal.Decimal
	Threshold decimal.NullDecimal
}

// rawShippingRule mirrors the loosely-typed JSON stored by the dashboards.
type rawShippingRule struct {
	Type                  string           `json:"type"`
	Cost                  *decimal.Decimal `json:"cost"`
	FreeShippingThreshold *decimal.Decimal `json:"free_shipping_threshold"`
}

// ParseShippingRule validates a stored shipping_rules document into the closed
// union. Unknown tags, missing tags, and malformed documents all collapse to
// RuleNone rather than falling through at calculation time.
func ParseShippingRule(raw []byte) ShippingRule {
	if len(raw) == 0 {
		return ShippingRule{Kind: RuleNone}
	}
	var doc rawShippingRule
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ShippingRule{Kind: RuleNone}
	}
	switch RuleKind(strings.ToLower(strings.TrimSpace(doc.Type))) {
	case RuleFlatRate:
		if doc.Cost == nil || doc.Cost.IsNegative() {
			return ShippingRule{Kind: RuleNone}
		}
		return ShippingRule{Kind: RuleFlatRate, Cost: *doc.Cost}
	case RulePerItem:
		if doc.Cost == nil || doc.Cost.IsNegative() {
			return ShippingRule{Kind: RuleNone}
		}
		return ShippingRule{Kind: RulePerItem, Cost: *doc.Cost}
	case RuleThreshold:
		rule := ShippingRule{Kind: RuleThreshold}
		if doc.FreeShippingThreshold != nil && !doc.FreeShippingThreshold.IsNegative() {
			rule.Threshold = decimal.NewNullDecimal(*doc.FreeShippingThreshold)
		}
		return rule
	default:
		return ShippingRule{Kind: RuleNone}
	}
}
