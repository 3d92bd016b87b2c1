package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrUnavailable marks a settings fetch failure. Callers degrade to the
// documented defaults instead of failing the calculation.
var ErrUnavailable = errors.New("settings unavailable")

// Platform is the singleton platform-wide configuration.
type Platform struct {
	DefaultTaxRate         decimal.Decimal
	TaxType                string
	AllowSellerTaxOverride bool
	FreeShippingThreshold  decimal.Decimal
	DefaultShippingCost    decimal.Decimal
}

// DefaultPlatform returns the documented fallback configuration used when the
// settings row is absent or unreadable.
func DefaultPlatform() Platform {
	return Platform{
		DefaultTaxRate:         decimal.NewFromFloat(10.0),
		TaxType:                "GST",
		AllowSellerTaxOverride: false,
		FreeShippingThreshold:  decimal.NewFromFloat(99.00),
		DefaultShippingCost:    decimal.NewFromFloat(9.95),
	}
}

// Seller holds a seller's optional overrides. Absence of a row is valid and
// means the platform defaults apply.
type Seller struct {
	SellerID              uuid.UUID
	TaxRateOverride       decimal.NullDecimal
	Rule                  ShippingRule
	FreeShippingThreshold decimal.NullDecimal
}

// Store loads platform and seller settings from Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const platformQuery = `
SELECT default_tax_rate::text, tax_type, allow_seller_tax_override,
       free_shipping_threshold::text, default_shipping_cost::text
FROM platform_settings
WHERE id = 1`

const sellerQuery = `
SELECT seller_id, tax_rate_override::text, shipping_rules, free_shipping_threshold::text
FROM seller_settings
WHERE seller_id = $1`

// Platform fetches the platform settings singleton. A missing row yields the
// documented defaults without error; query failures surface ErrUnavailable.
func (s *Store) Platform(ctx context.Context) (Platform, error) {
	if s == nil || s.Pool == nil {
		return DefaultPlatform(), fmt.Errorf("%w: store not configured", ErrUnavailable)
	}
	var (
		taxRateText   string
		taxType       string
		allowOverride bool
		thresholdText string
		shippingText  string
	)
	err := s.Pool.QueryRow(ctx, platformQuery).Scan(&taxRateText, &taxType, &allowOverride, &thresholdText, &shippingText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return DefaultPlatform(), nil
		}
		return DefaultPlatform(), fmt.Errorf("%w: platform settings: %v", ErrUnavailable, err)
	}

	out := DefaultPlatform()
	if rate, err := decimal.NewFromString(taxRateText); err == nil && !rate.IsNegative() {
		out.DefaultTaxRate = rate
	}
	if taxType != "" {
		out.TaxType = taxType
	}
	out.AllowSellerTaxOverride = allowOverride
	if threshold, err := decimal.NewFromString(thresholdText); err == nil && !threshold.IsNegative() {
		out.FreeShippingThreshold = threshold
	}
	if cost, err := decimal.NewFromString(shippingText); err == nil && !cost.IsNegative() {
		out.DefaultShippingCost = cost
	}
	return out, nil
}

// Seller fetches one seller's settings. A missing row returns (nil, nil);
// query failures surface ErrUnavailable so callers can degrade.
func (s *Store) Seller(ctx context.Context, sellerID uuid.UUID) (*Seller, error) {
	if s == nil || s.Pool == nil {
		return nil, fmt.Errorf("%w: store not configured", ErrUnavailable)
	}
	var (
		id            uuid.UUID
		taxText       *string
		rulesRaw      []byte
		thresholdText *string
	)
	err := s.Pool.QueryRow(ctx, sellerQuery, sellerID.String()).Scan(&id, &taxText, &rulesRaw, &thresholdText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: seller settings for %s: %v", ErrUnavailable, sellerID, err)
	}

	out := &Seller{SellerID: id, Rule: ParseShippingRule(rulesRaw)}
	if taxText != nil {
		if rate, err := decimal.NewFromString(*taxText); err == nil && !rate.IsNegative() {
			out.TaxRateOverride = decimal.NewNullDecimal(rate)
		}
	}
	if thresholdText != nil {
		if threshold, err := decimal.NewFromString(*thresholdText); err == nil && !threshold.IsNegative() {
			out.FreeShippingThreshold = decimal.NewNullDecimal(threshold)
		}
	}
	return out, nil
}

// isUndefinedTable detects a missing settings table so fresh environments can
// run on defaults before migrations land.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
