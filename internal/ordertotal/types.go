package ordertotal

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// LineInput is one cart line as submitted by the storefront client.
type LineInput struct {
	ProductID string  `json:"product_id" validate:"required"`
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
}

// Address is the shipping destination. Only the country participates in tax
// eligibility; state and postcode are carried for future carrier quoting.
type Address struct {
	Country  string `json:"country"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

// Request is the calculate-total request body.
type Request struct {
	Items           []LineInput `json:"items" validate:"required,min=1,dive"`
	ShippingAddress Address     `json:"shippingAddress"`
}

// Line is a validated cart line with parsed identifiers.
type Line struct {
	Input     LineInput
	ProductID uuid.UUID
	VariantID uuid.NullUUID
}

// ParseLines validates and parses raw cart lines.
func ParseLines(items []LineInput) ([]Line, error) {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be a positive integer: %w", ErrInvalidInput)
		}
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q: %w", item.ProductID, ErrInvalidInput)
		}
		line := Line{Input: item, ProductID: productID}
		if item.VariantID != nil && *item.VariantID != "" {
			variantID, err := uuid.Parse(*item.VariantID)
			if err != nil {
				return nil, fmt.Errorf("invalid variant id %q: %w", *item.VariantID, ErrInvalidInput)
			}
			line.VariantID = uuid.NullUUID{UUID: variantID, Valid: true}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// TaxInfo describes the tax portion of the result for display.
type TaxInfo struct {
	TaxType   string   `json:"taxType"`
	TaxRate   float64  `json:"taxRate"`
	TaxLabel  string   `json:"taxLabel"`
	IsMixed   bool     `json:"isMixed"`
	Breakdown []string `json:"breakdown"`
}

// ShippingInfo describes how freight was resolved for display.
type ShippingInfo struct {
	Method string `json:"method"`
	Label  string `json:"label"`
}

// ProcessedLine is an input line echoed back with its resolved unit price.
type ProcessedLine struct {
	ProductID      string  `json:"product_id"`
	VariantID      *string `json:"variant_id,omitempty"`
	Quantity       int     `json:"quantity"`
	EffectivePrice float64 `json:"effectivePrice"`
}

// Result is the calculate-total response body. All monetary values are
// rounded to two decimal places at assembly time.
type Result struct {
	Subtotal       float64         `json:"subtotal"`
	TotalTax       float64         `json:"totalTax"`
	TotalFreight   float64         `json:"totalFreight"`
	GrandTotal     float64         `json:"grandTotal"`
	TaxInfo        TaxInfo         `json:"taxInfo"`
	ShippingInfo   ShippingInfo    `json:"shippingInfo"`
	ProcessedItems []ProcessedLine `json:"processedItems"`
}
