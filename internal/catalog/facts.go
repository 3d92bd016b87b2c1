package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported product discount modes. Unknown values
// read from storage collapse to DiscountNone at the load boundary.
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFlatAmount DiscountType = "flat_amount"
)

// ParseDiscountType maps a stored discount tag to the closed set.
func ParseDiscountType(value string) DiscountType {
	switch DiscountType(strings.ToLower(strings.TrimSpace(value))) {
	case DiscountPercentage:
		return DiscountPercentage
	case DiscountFlatAmount:
		return DiscountFlatAmount
	default:
		return DiscountNone
	}
}

// Owner identifies who owns a catalog product: the platform itself or a seller.
// The zero value is the platform.
type Owner struct {
	sellerID uuid.UUID
	seller   bool
}

// PlatformOwner returns the owner value for platform-owned products.
func PlatformOwner() Owner { return Owner{} }

// SellerOwner returns the owner value for a seller-owned product.
func SellerOwner(id uuid.UUID) Owner { return Owner{sellerID: id, seller: true} }

// IsPlatform reports whether the product belongs to the platform catalog.
func (o Owner) IsPlatform() bool { return !o.seller }

// SellerID returns the owning seller id when the product is seller-owned.
func (o Owner) SellerID() (uuid.UUID, bool) {
	if !o.seller {
		return uuid.UUID{}, false
	}
	return o.sellerID, true
}

// Key returns a stable grouping key: "platform" or the seller UUID string.
func (o Owner) Key() string {
	if !o.seller {
		return "platform"
	}
	return o.sellerID.String()
}

// Variant is a priced product variation.
type Variant struct {
	ID    uuid.UUID
	Price decimal.Decimal
}

// PricingFacts is the read-only snapshot of a product that the order total
// calculation needs. It is fetched once per calculation and never mutated.
type PricingFacts struct {
	ID               uuid.UUID
	BasePrice        decimal.Decimal
	Owner            Owner
	Discount         DiscountType
	DiscountValue    decimal.NullDecimal
	IsTaxable        bool
	IsShippingExempt bool
	Variants         []Variant
}

// VariantPrice resolves the unit price for the given variant id, falling back
// to the product base price when the variant is absent.
func (f PricingFacts) VariantPrice(variantID uuid.UUID) decimal.Decimal {
	for _, v := range f.Variants {
		if v.ID == variantID {
			return v.Price
		}
	}
	return f.BasePrice
}

// NotFoundError names the specific product id missing from the catalog.
type NotFoundError struct {
	ID uuid.UUID
}

// Error renders the message surfaced verbatim to the storefront client.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("Product not found for ID: %s", e.ID)
}
