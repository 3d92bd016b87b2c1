package ordertotal

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/marketsquare/orders-api/internal/catalog"
	"github.com/marketsquare/orders-api/internal/settings"
)

var (
	productA = uuid.MustParse("0b54f0a1-92c7-4f4e-9a3c-0334dc8bb771")
	productB = uuid.MustParse("1c65e1b2-a3d8-405f-8b4d-1445ed9cc882")
	productC = uuid.MustParse("2d76f2c3-b4e9-4160-9c5e-2556fe0dd993")
	sellerA  = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	sellerB  = uuid.MustParse("22222222-2222-4222-8222-222222222222")
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func ndec(t *testing.T, s string) decimal.NullDecimal {
	t.Helper()
	return decimal.NewNullDecimal(dec(t, s))
}

func taxableProduct(t *testing.T, id uuid.UUID, owner catalog.Owner, price string) catalog.PricingFacts {
	t.Helper()
	return catalog.PricingFacts{
		ID:        id,
		BasePrice: dec(t, price),
		Owner:     owner,
		Discount:  catalog.DiscountNone,
		IsTaxable: true,
	}
}

func line(id uuid.UUID, qty int) Line {
	return Line{
		Input:     LineInput{ProductID: id.String(), Quantity: qty},
		ProductID: id,
	}
}

func australia() Address {
	return Address{Country: "Australia", State: "NSW", Postcode: "2000"}
}

func newEngine() Engine {
	return Engine{TaxCountry: "Australia"}
}

func TestComputeSingleTaxableLine(t *testing.T) {
	platform := settings.DefaultPlatform()
	platform.FreeShippingThreshold = dec(t, "150")

	snap := Snapshot{
		Platform: platform,
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: taxableProduct(t, productA, catalog.PlatformOwner(), "100"),
		},
		Sellers: map[uuid.UUID]*settings.Seller{},
	}

	result := newEngine().Compute([]Line{line(productA, 1)}, australia(), snap)

	require.Equal(t, 100.00, result.Subtotal)
	require.Equal(t, 10.00, result.TotalTax)
	require.Equal(t, 9.95, result.TotalFreight)
	require.Equal(t, 119.95, result.GrandTotal)
	require.Equal(t, "GST", result.TaxInfo.TaxType)
	require.Equal(t, 10.00, result.TaxInfo.TaxRate)
	require.Equal(t, "GST 10.0%", result.TaxInfo.TaxLabel)
	require.False(t, result.TaxInfo.IsMixed)
	require.Empty(t, result.TaxInfo.Breakdown)
	require.Equal(t, "Standard", result.ShippingInfo.Method)
	require.Equal(t, "Shipping - Free over $150", result.ShippingInfo.Label)
	require.Len(t, result.ProcessedItems, 1)
	require.Equal(t, 100.00, result.ProcessedItems[0].EffectivePrice)
}

func TestComputeThresholdBoundaryIsInclusive(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: {ID: productA, BasePrice: dec(t, "99"), Owner: catalog.PlatformOwner()},
		},
		Sellers: map[uuid.UUID]*settings.Seller{},
	}

	result := newEngine().Compute([]Line{line(productA, 1)}, australia(), snap)

	require.Equal(t, 99.00, result.Subtotal)
	require.Equal(t, 0.00, result.TotalFreight)
	require.Equal(t, "Shipping (Free - over $99)", result.ShippingInfo.Label)
}

func TestComputeDiscounts(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: {
				ID:            productA,
				BasePrice:     dec(t, "100"),
				Owner:         catalog.PlatformOwner(),
				Discount:      catalog.DiscountPercentage,
				DiscountValue: ndec(t, "25"),
			},
			productB: {
				ID:            productB,
				BasePrice:     dec(t, "100"),
				Owner:         catalog.PlatformOwner(),
				Discount:      catalog.DiscountFlatAmount,
				DiscountValue: ndec(t, "150"),
			},
		},
		Sellers: map[uuid.UUID]*settings.Seller{},
	}

	result := newEngine().Compute([]Line{line(productA, 1), line(productB, 1)}, australia(), snap)

	require.Equal(t, 75.00, result.ProcessedItems[0].EffectivePrice)
	// excess flat discount clamps at zero, never negative
	require.Equal(t, 0.00, result.ProcessedItems[1].EffectivePrice)
	require.Equal(t, 75.00, result.Subtotal)
}

func TestComputeMixedCartBreakdown(t *testing.T) {
	platform := settings.DefaultPlatform()
	platform.AllowSellerTaxOverride = true

	snap := Snapshot{
		Platform: platform,
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: taxableProduct(t, productA, catalog.PlatformOwner(), "100"),
			productB: taxableProduct(t, productB, catalog.SellerOwner(sellerA), "100"),
		},
		Sellers: map[uuid.UUID]*settings.Seller{
			sellerA: {SellerID: sellerA, TaxRateOverride: ndec(t, "15")},
		},
	}

	result := newEngine().Compute([]Line{line(productA, 1), line(productB, 1)}, australia(), snap)

	require.Equal(t, 200.00, result.Subtotal)
	require.Equal(t, 25.00, result.TotalTax)
	require.True(t, result.TaxInfo.IsMixed)
	require.Equal(t, []string{"Admin 10%", "Seller 15%"}, result.TaxInfo.Breakdown)
	require.Equal(t, "GST (Admin 10%, Seller 15%)", result.TaxInfo.TaxLabel)
	require.Equal(t, 12.50, result.TaxInfo.TaxRate)
	require.Equal(t, 225.00, result.GrandTotal)
}

func TestComputeOverrideGateClosed(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: taxableProduct(t, productA, catalog.PlatformOwner(), "100"),
			productB: taxableProduct(t, productB, catalog.SellerOwner(sellerA), "100"),
		},
		Sellers: map[uuid.UUID]*settings.Seller{
			sellerA: {SellerID: sellerA, TaxRateOverride: ndec(t, "15")},
		},
	}

	result := newEngine().Compute([]Line{line(productA, 1), line(productB, 1)}, australia(), snap)

	require.Equal(t, 20.00, result.TotalTax)
	require.False(t, result.TaxInfo.IsMixed)
	require.Equal(t, "GST 10.0%", result.TaxInfo.TaxLabel)
}

func TestComputeTwoSellersFreightIsSummed(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: {ID: productA, BasePrice: dec(t, "50"), Owner: catalog.SellerOwner(sellerA)},
			productB: {ID: productB, BasePrice: dec(t, "50"), Owner: catalog.SellerOwner(sellerB)},
		},
		Sellers: map[uuid.UUID]*settings.Seller{
			sellerA: {SellerID: sellerA, Rule: settings.ShippingRule{Kind: settings.RuleFlatRate, Cost: dec(t, "5")}},
			sellerB: {SellerID: sellerB, Rule: settings.ShippingRule{Kind: settings.RuleFlatRate, Cost: dec(t, "7.5")}},
		},
	}

	result := newEngine().Compute([]Line{line(productA, 1), line(productB, 1)}, australia(), snap)

	require.Equal(t, 12.50, result.TotalFreight)
	// sellers sort by id, so sellerA's rule names the method
	require.Equal(t, "Flat Rate", result.ShippingInfo.Method)
	require.Equal(t, "Shipping (Flat Rate)", result.ShippingInfo.Label)
}

func TestComputePerItemFreightSkipsExemptLines(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: {ID: productA, BasePrice: dec(t, "10"), Owner: catalog.SellerOwner(sellerA)},
			productB: {ID: productB, BasePrice: dec(t, "10"), Owner: catalog.SellerOwner(sellerA), IsShippingExempt: true},
		},
		Sellers: map[uuid.UUID]*settings.Seller{
			sellerA: {SellerID: sellerA, Rule: settings.ShippingRule{Kind: settings.RulePerItem, Cost: dec(t, "4")}},
		},
	}

	result := newEngine().Compute([]Line{line(productA, 3), line(productB, 2)}, australia(), snap)

	require.Equal(t, 12.00, result.TotalFreight)
	require.Equal(t, "Per Item", result.ShippingInfo.Method)
}

func TestComputeAllExemptLinesShipFree(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: {ID: productA, BasePrice: dec(t, "20"), Owner: catalog.SellerOwner(sellerA), IsShippingExempt: true},
		},
		Sellers: map[uuid.UUID]*settings.Seller{
			sellerA: {SellerID: sellerA, Rule: settings.ShippingRule{Kind: settings.RuleFlatRate, Cost: dec(t, "5")}},
		},
	}

	result := newEngine().Compute([]Line{line(productA, 2)}, australia(), snap)

	require.Equal(t, 0.00, result.TotalFreight)
}

func TestComputeThresholdRuleFallbackChain(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: {ID: productA, BasePrice: dec(t, "60"), Owner: catalog.SellerOwner(sellerA)},
		},
		Sellers: map[uuid.UUID]*settings.Seller{
			sellerA: {
				SellerID: sellerA,
				Rule: settings.ShippingRule{
					Kind:      settings.RuleThreshold,
					Threshold: ndec(t, "50"),
				},
			},
		},
	}

	result := newEngine().Compute([]Line{line(productA, 1)}, australia(), snap)

	require.Equal(t, 0.00, result.TotalFreight)
	require.Equal(t, "Free Shipping over $50", result.ShippingInfo.Method)
	require.Equal(t, "Shipping (Free Shipping over $50)", result.ShippingInfo.Label)
}

func TestComputeThresholdRuleUnderThresholdChargesDefault(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: {ID: productA, BasePrice: dec(t, "40"), Owner: catalog.SellerOwner(sellerA)},
		},
		Sellers: map[uuid.UUID]*settings.Seller{
			sellerA: {
				SellerID: sellerA,
				Rule: settings.ShippingRule{
					Kind:      settings.RuleThreshold,
					Threshold: ndec(t, "50"),
				},
			},
		},
	}

	result := newEngine().Compute([]Line{line(productA, 1)}, australia(), snap)

	require.Equal(t, 9.95, result.TotalFreight)
}

func TestComputeForeignDestinationIsUntaxed(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: taxableProduct(t, productA, catalog.PlatformOwner(), "100"),
		},
		Sellers: map[uuid.UUID]*settings.Seller{},
	}

	result := newEngine().Compute([]Line{line(productA, 1)}, Address{Country: "New Zealand"}, snap)

	require.Equal(t, 0.00, result.TotalTax)
	require.Equal(t, "GST 10.0%", result.TaxInfo.TaxLabel)
	require.False(t, result.TaxInfo.IsMixed)
}

func TestComputeVariantPriceFallsBackToBase(t *testing.T) {
	variantID := uuid.MustParse("3e87a3d4-c5fa-4271-8d6f-3667af1eeaa4")
	missing := uuid.MustParse("4f98b4e5-d60b-4382-9e70-4778b02ffbb5")

	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: {
				ID:        productA,
				BasePrice: dec(t, "100"),
				Owner:     catalog.PlatformOwner(),
				Variants:  []catalog.Variant{{ID: variantID, Price: dec(t, "80")}},
			},
		},
		Sellers: map[uuid.UUID]*settings.Seller{},
	}

	withVariant := line(productA, 1)
	withVariant.VariantID = uuid.NullUUID{UUID: variantID, Valid: true}
	withMissing := line(productA, 1)
	withMissing.VariantID = uuid.NullUUID{UUID: missing, Valid: true}

	result := newEngine().Compute([]Line{withVariant, withMissing}, australia(), snap)

	require.Equal(t, 80.00, result.ProcessedItems[0].EffectivePrice)
	require.Equal(t, 100.00, result.ProcessedItems[1].EffectivePrice)
}

func TestComputeGrandTotalIdentity(t *testing.T) {
	platform := settings.DefaultPlatform()
	platform.AllowSellerTaxOverride = true

	snap := Snapshot{
		Platform: platform,
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: taxableProduct(t, productA, catalog.PlatformOwner(), "33.33"),
			productB: taxableProduct(t, productB, catalog.SellerOwner(sellerA), "17.77"),
			productC: {ID: productC, BasePrice: dec(t, "5.55"), Owner: catalog.SellerOwner(sellerB)},
		},
		Sellers: map[uuid.UUID]*settings.Seller{
			sellerA: {SellerID: sellerA, TaxRateOverride: ndec(t, "12.5")},
			sellerB: {SellerID: sellerB, Rule: settings.ShippingRule{Kind: settings.RuleFlatRate, Cost: dec(t, "3.2")}},
		},
	}
	lines := []Line{line(productA, 3), line(productB, 2), line(productC, 1)}

	first := newEngine().Compute(lines, australia(), snap)
	second := newEngine().Compute(lines, australia(), snap)

	require.Equal(t, first, second)
	require.InDelta(t, first.Subtotal+first.TotalTax+first.TotalFreight, first.GrandTotal, 0.011)
}

func TestComputeGroupOrderIsPlatformFirst(t *testing.T) {
	snap := Snapshot{
		Platform: settings.DefaultPlatform(),
		Products: map[uuid.UUID]catalog.PricingFacts{
			productA: {ID: productA, BasePrice: dec(t, "10"), Owner: catalog.SellerOwner(sellerB)},
			productB: {ID: productB, BasePrice: dec(t, "10"), Owner: catalog.PlatformOwner()},
			productC: {ID: productC, BasePrice: dec(t, "10"), Owner: catalog.SellerOwner(sellerA)},
		},
		Sellers: map[uuid.UUID]*settings.Seller{},
	}

	result := newEngine().Compute([]Line{line(productA, 1), line(productB, 1), line(productC, 1)}, australia(), snap)

	require.Equal(t, productB.String(), result.ProcessedItems[0].ProductID)
	require.Equal(t, productC.String(), result.ProcessedItems[1].ProductID)
	require.Equal(t, productA.String(), result.ProcessedItems[2].ProductID)
}
