package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedPlatformSettings(db)
	seedSellerSettings(db)
	seedProducts(db)

	log.Println("Seeding completed successfully!")
}

func seedPlatformSettings(db *sql.DB) {
	fmt.Println("Seeding platform settings...")
	_, err := db.Exec(`
		INSERT INTO platform_settings (id, default_tax_rate, tax_type, allow_seller_tax_override, free_shipping_threshold, default_shipping_cost)
		VALUES (1, 10.0, 'GST', TRUE, 99.00, 9.95)
		ON CONFLICT (id) DO UPDATE SET
			default_tax_rate = EXCLUDED.default_tax_rate,
			tax_type = EXCLUDED.tax_type,
			allow_seller_tax_override = EXCLUDED.allow_seller_tax_override,
			free_shipping_threshold = EXCLUDED.free_shipping_threshold,
			default_shipping_cost = EXCLUDED.default_shipping_cost;
	`)
	if err != nil {
		log.Printf("Failed to seed platform settings: %v", err)
	}
}

// Fixed seller ids so reruns and local API testing stay stable.
const (
	sellerOutdoors  = "8b7f2f60-1a52-4a8e-9d1e-64c2b8b3a001"
	sellerHomewares = "8b7f2f60-1a52-4a8e-9d1e-64c2b8b3a002"
	sellerBooks     = "8b7f2f60-1a52-4a8e-9d1e-64c2b8b3a003"
)

func seedSellerSettings(db *sql.DB) {
	sellers := []struct {
		ID            string
		TaxOverride   sql.NullFloat64
		ShippingRules sql.NullString
		Threshold     sql.NullFloat64
	}{
		{
			ID:            sellerOutdoors,
			TaxOverride:   sql.NullFloat64{Float64: 15.0, Valid: true},
			ShippingRules: sql.NullString{String: `{"type":"flat_rate","cost":12.50}`, Valid: true},
		},
		{
			ID:            sellerHomewares,
			ShippingRules: sql.NullString{String: `{"type":"per_item","cost":3.00}`, Valid: true},
			Threshold:     sql.NullFloat64{Float64: 150.00, Valid: true},
		},
		{
			ID:            sellerBooks,
			ShippingRules: sql.NullString{String: `{"type":"free_shipping_threshold","free_shipping_threshold":49.00}`, Valid: true},
		},
	}

	fmt.Println("Seeding seller settings...")
	for _, s := range sellers {
		_, err := db.Exec(`
			INSERT INTO seller_settings (seller_id, tax_rate_override, shipping_rules, free_shipping_threshold)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (seller_id) DO UPDATE SET
				tax_rate_override = EXCLUDED.tax_rate_override,
				shipping_rules = EXCLUDED.shipping_rules,
				free_shipping_threshold = EXCLUDED.free_shipping_threshold;
		`, s.ID, s.TaxOverride, s.ShippingRules, s.Threshold)
		if err != nil {
			log.Printf("Failed to seed seller settings %s: %v", s.ID, err)
		}
	}
}

func seedProducts(db *sql.DB) {
	products := []struct {
		ID               string
		Price            float64
		SellerID         sql.NullString
		DiscountType     string
		DiscountValue    sql.NullFloat64
		IsTaxable        bool
		IsShippingExempt bool
		VariantPrices    []float64
	}{
		{
			ID:            "9c803c71-2b63-4b9f-8e2f-75d3c9c4b001",
			Price:         249.00,
			DiscountType:  "percentage",
			DiscountValue: sql.NullFloat64{Float64: 10, Valid: true},
			IsTaxable:     true,
			VariantPrices: []float64{249.00, 279.00},
		},
		{
			ID:           "9c803c71-2b63-4b9f-8e2f-75d3c9c4b002",
			Price:        45.50,
			DiscountType: "none",
			IsTaxable:    true,
		},
		{
			ID:            "9c803c71-2b63-4b9f-8e2f-75d3c9c4b003",
			Price:         89.95,
			SellerID:      sql.NullString{String: sellerOutdoors, Valid: true},
			DiscountType:  "flat_amount",
			DiscountValue: sql.NullFloat64{Float64: 15, Valid: true},
			IsTaxable:     true,
		},
		{
			ID:            "9c803c71-2b63-4b9f-8e2f-75d3c9c4b004",
			Price:         32.00,
			SellerID:      sql.NullString{String: sellerHomewares, Valid: true},
			DiscountType:  "none",
			IsTaxable:     true,
			VariantPrices: []float64{32.00, 38.00, 44.00},
		},
		{
			ID:               "9c803c71-2b63-4b9f-8e2f-75d3c9c4b005",
			Price:            24.99,
			SellerID:         sql.NullString{String: sellerBooks, Valid: true},
			DiscountType:     "none",
			IsTaxable:        false,
			IsShippingExempt: false,
		},
		{
			ID:               "9c803c71-2b63-4b9f-8e2f-75d3c9c4b006",
			Price:            9.99,
			SellerID:         sql.NullString{String: sellerBooks, Valid: true},
			DiscountType:     "none",
			IsTaxable:        false,
			IsShippingExempt: true,
		},
	}

	fmt.Println("Seeding products...")
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (id, price, seller_id, discount_type, discount_value, is_taxable, is_shipping_exempt)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				price = EXCLUDED.price,
				seller_id = EXCLUDED.seller_id,
				discount_type = EXCLUDED.discount_type,
				discount_value = EXCLUDED.discount_value,
				is_taxable = EXCLUDED.is_taxable,
				is_shipping_exempt = EXCLUDED.is_shipping_exempt;
		`, p.ID, p.Price, p.SellerID, p.DiscountType, p.DiscountValue, p.IsTaxable, p.IsShippingExempt)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.ID, err)
			continue
		}

		for i, price := range p.VariantPrices {
			// derive a stable variant id from the product id
			variantID := fmt.Sprintf("%s%04d", p.ID[:len(p.ID)-4], i+1)
			_, err := db.Exec(`
				INSERT INTO product_variants (id, product_id, price)
				VALUES ($1, $2, $3)
				ON CONFLICT (id) DO UPDATE SET price = EXCLUDED.price;
			`, variantID, p.ID, price)
			if err != nil {
				log.Printf("Failed to seed variant for product %s: %v", p.ID, err)
			}
		}
	}
}
