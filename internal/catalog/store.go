package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store loads product pricing facts from Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const pricingFactsQuery = `
SELECT id, price::text, seller_id, COALESCE(discount_type, 'none'), discount_value::text,
       is_taxable, is_shipping_exempt
FROM products
WHERE id = ANY($1::uuid[])`

const variantsQuery = `
SELECT id, product_id, price::text
FROM product_variants
WHERE product_id = ANY($1::uuid[])`

// PricingFacts batch-fetches pricing facts (with variants) for the given
// product ids. Ids with no matching row are simply absent from the result;
// the caller decides whether that is an error.
func (s *Store) PricingFacts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]PricingFacts, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	if len(ids) == 0 {
		return map[uuid.UUID]PricingFacts{}, nil
	}
	params := make([]string, 0, len(ids))
	for _, id := range ids {
		params = append(params, id.String())
	}

	rows, err := s.Pool.Query(ctx, pricingFactsQuery, params)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	facts := make(map[uuid.UUID]PricingFacts, len(ids))
	for rows.Next() {
		var (
			id               uuid.UUID
			priceText        string
			sellerID         uuid.NullUUID
			discountType     string
			discountText     *string
			isTaxable        bool
			isShippingExempt bool
		)
		if err := rows.Scan(&id, &priceText, &sellerID, &discountType, &discountText, &isTaxable, &isShippingExempt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		price, err := decimal.NewFromString(priceText)
		if err != nil {
			return nil, fmt.Errorf("parse price for product %s: %w", id, err)
		}
		f := PricingFacts{
			ID:               id,
			BasePrice:        price,
			Owner:            PlatformOwner(),
			Discount:         ParseDiscountType(discountType),
			IsTaxable:        isTaxable,
			IsShippingExempt: isShippingExempt,
		}
		if sellerID.Valid {
			f.Owner = SellerOwner(sellerID.UUID)
		}
		if discountText != nil {
			value, err := decimal.NewFromString(*discountText)
			if err != nil {
				return nil, fmt.Errorf("parse discount for product %s: %w", id, err)
			}
			if value.IsNegative() {
				// Negative discounts are data corruption; treat as no discount.
				f.Discount = DiscountNone
			} else {
				f.DiscountValue = decimal.NewNullDecimal(value)
			}
		}
		facts[id] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	if err := s.attachVariants(ctx, params, facts); err != nil {
		return nil, err
	}
	return facts, nil
}

func (s *Store) attachVariants(ctx context.Context, ids []string, facts map[uuid.UUID]PricingFacts) error {
	rows, err := s.Pool.Query(ctx, variantsQuery, ids)
	if err != nil {
		return fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        uuid.UUID
			productID uuid.UUID
			priceText string
		)
		if err := rows.Scan(&id, &productID, &priceText); err != nil {
			return fmt.Errorf("scan variant: %w", err)
		}
		price, err := decimal.NewFromString(priceText)
		if err != nil {
			return fmt.Errorf("parse price for variant %s: %w", id, err)
		}
		f, ok := facts[productID]
		if !ok {
			continue
		}
		f.Variants = append(f.Variants, Variant{ID: id, Price: price})
		facts[productID] = f
	}
	return rows.Err()
}
