package vehicle

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/garagelink/internal/cache"
	"github.com/kiranshivaraju/garagelink/pkg/models"
)

// CachedCatalog serves vehicle lookups from the cache and falls back to the
// wrapped catalog on a miss. Cache errors never fail a lookup.
type CachedCatalog struct {
	next  Catalog
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedCatalog wraps next with a cache layer.
func NewCachedCatalog(next Catalog, c cache.Cache, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{next: next, cache: c, ttl: ttl}
}

func (c *CachedCatalog) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	key := cache.VehicleKey(id)

	raw, found, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("vehicle cache read failed", "vehicle_id", id, "error", err)
	}
	if found {
		var v models.Vehicle
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
		_ = c.cache.Delete(ctx, key)
	}

	v, err := c.next.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			slog.Warn("vehicle cache write failed", "vehicle_id", id, "error", err)
		}
	}
	return v, nil
}
