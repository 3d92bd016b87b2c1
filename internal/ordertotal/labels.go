package ordertotal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marketsquare/orders-api/internal/settings"
)

// buildTaxInfo derives the display tax block from the resolved group rates.
// A cart whose groups share one effective rate reports that rate; a mixed
// cart reports the blended rate totalTax/subtotal and a per-source breakdown.
// The blended rate is display-only and never feeds back into computation.
func buildTaxInfo(groups []*sellerGroup, platform settings.Platform, subtotal, totalTax decimal.Decimal) TaxInfo {
	// breakdown serialises as [] rather than null for the storefront client
	info := TaxInfo{TaxType: platform.TaxType, Breakdown: []string{}}

	if !totalTax.IsPositive() {
		info.TaxRate = round2(platform.DefaultTaxRate)
		info.TaxLabel = singleRateLabel(platform.TaxType, platform.DefaultTaxRate)
		return info
	}

	var (
		distinct  []decimal.Decimal
		hasAdmin  bool
		hasSeller bool
	)
	for _, g := range groups {
		if g.owner.IsPlatform() {
			hasAdmin = true
		} else {
			hasSeller = true
		}
		if !containsRate(distinct, g.taxRate) {
			distinct = append(distinct, g.taxRate)
		}
	}

	if len(distinct) == 1 {
		info.TaxRate = round2(distinct[0])
		info.TaxLabel = singleRateLabel(platform.TaxType, distinct[0])
		return info
	}

	info.IsMixed = true
	if hasAdmin && hasSeller {
		adminRate := platform.DefaultTaxRate
		var sellerRates []string
		for _, rate := range distinct {
			if !rate.Equal(adminRate) {
				sellerRates = append(sellerRates, formatDec(rate))
			}
		}
		info.Breakdown = append(info.Breakdown, fmt.Sprintf("Admin %s%%", formatDec(adminRate)))
		if len(sellerRates) == 1 {
			info.Breakdown = append(info.Breakdown, fmt.Sprintf("Seller %s%%", sellerRates[0]))
		} else {
			info.Breakdown = append(info.Breakdown, fmt.Sprintf("Sellers %s%%", strings.Join(sellerRates, "%, ")))
		}
	}

	blended := totalTax.Div(subtotal).Mul(hundred)
	info.TaxRate = round2(blended)
	if len(info.Breakdown) > 0 {
		info.TaxLabel = fmt.Sprintf("%s (%s)", platform.TaxType, strings.Join(info.Breakdown, ", "))
	} else {
		info.TaxLabel = singleRateLabel(platform.TaxType, blended)
	}
	return info
}

// buildShippingInfo derives the display shipping block. The first non-platform
// group carrying a shipping rule determines the method; group order is
// deterministic, so the same cart always reports the same method.
func buildShippingInfo(groups []*sellerGroup, platform settings.Platform, subtotal, totalFreight decimal.Decimal) ShippingInfo {
	method := "Standard"
	label := "Shipping"

	for _, g := range groups {
		if g.owner.IsPlatform() || g.settings == nil {
			continue
		}
		rule := g.settings.Rule
		if rule.Kind == settings.RuleNone {
			continue
		}

		switch rule.Kind {
		case settings.RuleFlatRate:
			method = "Flat Rate"
		case settings.RulePerItem:
			method = "Per Item"
		case settings.RuleThreshold:
			display := g.threshold
			if rule.Threshold.Valid {
				display = rule.Threshold.Decimal
			}
			method = fmt.Sprintf("Free Shipping over $%s", formatDec(display))
		}

		if totalFreight.IsZero() && subtotal.GreaterThanOrEqual(g.threshold) {
			label = fmt.Sprintf("Shipping (Free - over $%s)", formatDec(g.threshold))
		} else {
			label = fmt.Sprintf("Shipping (%s)", method)
		}
		break
	}

	if label == "Shipping" && platform.FreeShippingThreshold.IsPositive() {
		switch {
		case totalFreight.IsZero() && subtotal.GreaterThanOrEqual(platform.FreeShippingThreshold):
			label = fmt.Sprintf("Shipping (Free - over $%s)", formatDec(platform.FreeShippingThreshold))
		case totalFreight.IsPositive() && platform.FreeShippingThreshold.GreaterThan(subtotal):
			label = fmt.Sprintf("Shipping - Free over $%s", formatDec(platform.FreeShippingThreshold))
		}
	}

	return ShippingInfo{Method: method, Label: label}
}

func singleRateLabel(taxType string, rate decimal.Decimal) string {
	return fmt.Sprintf("%s %s%%", taxType, rate.StringFixed(1))
}

// formatDec renders a rate or amount without trailing zeros: 10.0 -> "10",
// 12.50 -> "12.5".
func formatDec(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

func containsRate(rates []decimal.Decimal, rate decimal.Decimal) bool {
	for _, r := range rates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}
