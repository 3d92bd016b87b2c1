package ordertotal

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/marketsquare/orders-api/internal/catalog"
	"github.com/marketsquare/orders-api/internal/settings"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Engine computes order totals over a loaded snapshot. It is a pure function
// of its inputs; nothing is shared or mutated across invocations.
type Engine struct {
	// TaxCountry is the single supported tax jurisdiction. Tax is charged
	// only when the shipping country matches exactly.
	TaxCountry string
}

type groupLine struct {
	line           Line
	facts          catalog.PricingFacts
	effectivePrice decimal.Decimal
}

// sellerGroup is the transient per-seller aggregate built during computation.
type sellerGroup struct {
	owner    catalog.Owner
	settings *settings.Seller
	lines    []groupLine

	taxRate   decimal.Decimal
	threshold decimal.Decimal

	subtotal decimal.Decimal
	tax      decimal.Decimal
	freight  decimal.Decimal
}

// Compute runs the calculation pipeline: group by seller, price each line,
// resolve tax and freight per seller, then assemble grand totals and labels.
// Intermediate math keeps full precision; rounding happens only here at
// assembly time.
func (e Engine) Compute(lines []Line, destination Address, snap Snapshot) Result {
	groups := e.groupBySeller(lines, snap)

	var (
		subtotal     decimal.Decimal
		totalTax     decimal.Decimal
		totalFreight decimal.Decimal
		processed    []ProcessedLine
	)

	for _, g := range groups {
		e.priceGroup(g, destination, snap)
		for _, gl := range g.lines {
			processed = append(processed, ProcessedLine{
				ProductID:      gl.line.Input.ProductID,
				VariantID:      gl.line.Input.VariantID,
				Quantity:       gl.line.Input.Quantity,
				EffectivePrice: round2(gl.effectivePrice),
			})
		}
		subtotal = subtotal.Add(g.subtotal)
		totalTax = totalTax.Add(g.tax)
		totalFreight = totalFreight.Add(g.freight)
	}

	grandTotal := subtotal.Add(totalTax).Add(totalFreight)

	return Result{
		Subtotal:       round2(subtotal),
		TotalTax:       round2(totalTax),
		TotalFreight:   round2(totalFreight),
		GrandTotal:     round2(grandTotal),
		TaxInfo:        buildTaxInfo(groups, snap.Platform, subtotal, totalTax),
		ShippingInfo:   buildShippingInfo(groups, snap.Platform, subtotal, totalFreight),
		ProcessedItems: processed,
	}
}

// groupBySeller partitions lines by product owner. Group order is
// deterministic: the platform group first, then sellers sorted by id.
func (e Engine) groupBySeller(lines []Line, snap Snapshot) []*sellerGroup {
	byKey := make(map[string]*sellerGroup)
	for _, line := range lines {
		facts := snap.Products[line.ProductID]
		key := facts.Owner.Key()
		g, ok := byKey[key]
		if !ok {
			g = &sellerGroup{owner: facts.Owner}
			if sellerID, isSeller := facts.Owner.SellerID(); isSeller {
				g.settings = snap.Sellers[sellerID]
			}
			byKey[key] = g
		}
		g.lines = append(g.lines, groupLine{line: line, facts: facts})
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		if key == "platform" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]*sellerGroup, 0, len(byKey))
	if platform, ok := byKey["platform"]; ok {
		groups = append(groups, platform)
	}
	for _, key := range keys {
		groups = append(groups, byKey[key])
	}
	return groups
}

// priceGroup resolves the group's effective tax rate and threshold, prices
// every line, and accumulates subtotal, tax, and freight.
func (e Engine) priceGroup(g *sellerGroup, destination Address, snap Snapshot) {
	g.taxRate = resolveTaxRate(g, snap.Platform)
	g.threshold = resolveThreshold(g, snap.Platform)

	var (
		eligibleSubtotal decimal.Decimal
		eligibleQty      int64
	)

	for i := range g.lines {
		gl := &g.lines[i]
		gl.effectivePrice = effectivePrice(gl.line, gl.facts)

		qty := decimal.NewFromInt(int64(gl.line.Input.Quantity))
		lineTotal := gl.effectivePrice.Mul(qty)
		g.subtotal = g.subtotal.Add(lineTotal)

		if gl.facts.IsTaxable && destination.Country == e.TaxCountry && g.taxRate.IsPositive() {
			g.tax = g.tax.Add(lineTotal.Mul(g.taxRate).Div(hundred))
		}

		if !gl.facts.IsShippingExempt {
			eligibleSubtotal = eligibleSubtotal.Add(lineTotal)
			eligibleQty += int64(gl.line.Input.Quantity)
		}
	}

	g.freight = resolveFreight(g, snap.Platform, eligibleSubtotal, eligibleQty)
}

// effectivePrice resolves a line's unit price: variant price if one is set
// and found (a missing variant falls back to the product base price), then
// the product discount, clamped at zero.
func effectivePrice(line Line, facts catalog.PricingFacts) decimal.Decimal {
	base := facts.BasePrice
	if line.VariantID.Valid {
		base = facts.VariantPrice(line.VariantID.UUID)
	}

	price := base
	switch {
	case facts.Discount == catalog.DiscountPercentage && facts.DiscountValue.Valid:
		price = base.Mul(one.Sub(facts.DiscountValue.Decimal.Div(hundred)))
	case facts.Discount == catalog.DiscountFlatAmount && facts.DiscountValue.Valid:
		price = base.Sub(facts.DiscountValue.Decimal)
	}
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// resolveTaxRate applies the override hierarchy: the seller's rate wins only
// when the platform gate allows it and the seller actually set one. The
// platform group always uses the platform default.
func resolveTaxRate(g *sellerGroup, platform settings.Platform) decimal.Decimal {
	if g.owner.IsPlatform() {
		return platform.DefaultTaxRate
	}
	if platform.AllowSellerTaxOverride && g.settings != nil && g.settings.TaxRateOverride.Valid {
		return g.settings.TaxRateOverride.Decimal
	}
	return platform.DefaultTaxRate
}

func resolveThreshold(g *sellerGroup, platform settings.Platform) decimal.Decimal {
	if g.settings != nil && g.settings.FreeShippingThreshold.Valid {
		return g.settings.FreeShippingThreshold.Decimal
	}
	return platform.FreeShippingThreshold
}

// resolveFreight computes one seller's freight from its non-exempt lines.
// The effective threshold short-circuits every rule type; the comparison is
// inclusive.
func resolveFreight(g *sellerGroup, platform settings.Platform, eligibleSubtotal decimal.Decimal, eligibleQty int64) decimal.Decimal {
	if eligibleQty == 0 {
		return decimal.Zero
	}
	if eligibleSubtotal.GreaterThanOrEqual(g.threshold) {
		return decimal.Zero
	}

	var rule settings.ShippingRule
	if g.settings != nil {
		rule = g.settings.Rule
	}
	switch rule.Kind {
	case settings.RuleFlatRate:
		return rule.Cost
	case settings.RulePerItem:
		return rule.Cost.Mul(decimal.NewFromInt(eligibleQty))
	case settings.RuleThreshold:
		local := g.threshold
		if rule.Threshold.Valid {
			local = rule.Threshold.Decimal
		}
		if eligibleSubtotal.LessThan(local) {
			return platform.DefaultShippingCost
		}
		return decimal.Zero
	default:
		return platform.DefaultShippingCost
	}
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
