package ordertotal

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/marketsquare/orders-api/internal/catalog"
	"github.com/marketsquare/orders-api/internal/obs"
	"github.com/marketsquare/orders-api/internal/settings"
)

// ProductSource batch-fetches pricing facts for product ids.
type ProductSource interface {
	PricingFacts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.PricingFacts, error)
}

// SettingsSource fetches platform and per-seller settings.
type SettingsSource interface {
	Platform(ctx context.Context) (settings.Platform, error)
	Seller(ctx context.Context, sellerID uuid.UUID) (*settings.Seller, error)
}

// Snapshot is the isolated, read-only data set one calculation runs against.
// Seller entries may be nil, meaning the seller has no settings row and the
// platform defaults apply.
type Snapshot struct {
	Platform settings.Platform
	Products map[uuid.UUID]catalog.PricingFacts
	Sellers  map[uuid.UUID]*settings.Seller
}

// Loader assembles a calculation snapshot. Product and platform fetches run
// concurrently, as do the per-seller settings fetches that follow them.
type Loader struct {
	Products ProductSource
	Settings SettingsSource
	Log      zerolog.Logger
}

// Load fetches everything one calculation needs. A missing product aborts the
// load with catalog.NotFoundError naming the id; settings failures degrade to
// defaults and are only logged.
func (l *Loader) Load(ctx context.Context, lines []Line) (Snapshot, error) {
	ids := distinctProductIDs(lines)

	snap := Snapshot{Sellers: map[uuid.UUID]*settings.Seller{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		facts, err := l.Products.PricingFacts(gctx, ids)
		if err != nil {
			return err
		}
		snap.Products = facts
		return nil
	})
	g.Go(func() error {
		platform, err := l.Settings.Platform(gctx)
		if err != nil {
			l.Log.Error().Err(err).Str("stage", "load_platform_settings").Msg("platform settings unavailable, using defaults")
			countSettingsFallback("platform")
			platform = settings.DefaultPlatform()
		}
		snap.Platform = platform
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	// Every requested id must resolve; a stale cart line is surfaced to the
	// client rather than silently dropped.
	for _, id := range ids {
		if _, ok := snap.Products[id]; !ok {
			return Snapshot{}, catalog.NotFoundError{ID: id}
		}
	}

	sellerIDs := distinctSellerIDs(snap.Products)
	if len(sellerIDs) == 0 {
		return snap, nil
	}

	var mu sync.Mutex
	sg, sctx := errgroup.WithContext(ctx)
	for _, sellerID := range sellerIDs {
		sellerID := sellerID
		sg.Go(func() error {
			seller, err := l.Settings.Seller(sctx, sellerID)
			if err != nil {
				l.Log.Error().Err(err).Str("stage", "load_seller_settings").Str("seller_id", sellerID.String()).Msg("seller settings unavailable, using defaults")
				countSettingsFallback("seller")
				seller = nil
			}
			mu.Lock()
			snap.Sellers[sellerID] = seller
			mu.Unlock()
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

func distinctProductIDs(lines []Line) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

func distinctSellerIDs(products map[uuid.UUID]catalog.PricingFacts) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, facts := range products {
		sellerID, ok := facts.Owner.SellerID()
		if !ok {
			continue
		}
		if _, dup := seen[sellerID]; dup {
			continue
		}
		seen[sellerID] = struct{}{}
		ids = append(ids, sellerID)
	}
	return ids
}

func countSettingsFallback(scope string) {
	if obs.SettingsFallbackTotal != nil {
		obs.SettingsFallbackTotal.WithLabelValues(scope).Inc()
	}
}
