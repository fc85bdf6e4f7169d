package vehicle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kiranshivaraju/garagelink/internal/cache"
	"github.com/kiranshivaraju/garagelink/internal/store"
	"github.com/kiranshivaraju/garagelink/internal/vehicle"
	"github.com/kiranshivaraju/garagelink/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Cache ---

type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) Ping(_ context.Context) error { return nil }
func (m *mockCache) SetJobStatus(_ context.Context, _ string, _ string, _ time.Duration) error {
	return nil
}
func (m *mockCache) GetJobStatus(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}
func (m *mockCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, nil
}

type countingCatalog struct {
	vehicle.Catalog
	calls int
}

func (c *countingCatalog) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	c.calls++
	return c.Catalog.GetVehicle(ctx, id)
}

func TestCachedCatalog_ReadThrough(t *testing.T) {
	backing := &countingCatalog{Catalog: seededCatalog(t)}
	c := newMockCache()
	catalog := vehicle.NewCachedCatalog(backing, c, time.Minute)
	ctx := context.Background()

	v, err := catalog.GetVehicle(ctx, "1700000000002")
	require.NoError(t, err)
	assert.Equal(t, "Camry", v.Model)
	assert.Contains(t, c.data, cache.VehicleKey("1700000000002"))

	v, err = catalog.GetVehicle(ctx, "1700000000002")
	require.NoError(t, err)
	assert.Equal(t, "Camry", v.Model)
	assert.Equal(t, 1, backing.calls)
}

func TestCachedCatalog_MissIsNotCached(t *testing.T) {
	c := newMockCache()
	catalog := vehicle.NewCachedCatalog(seededCatalog(t), c, time.Minute)

	_, err := catalog.GetVehicle(context.Background(), "1700000000001")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, c.data)
}

func TestCachedCatalog_CacheErrorFallsThrough(t *testing.T) {
	c := newMockCache()
	c.getErr = errors.New("redis down")
	catalog := vehicle.NewCachedCatalog(seededCatalog(t), c, time.Minute)

	v, err := catalog.GetVehicle(context.Background(), "1700000000002")
	require.NoError(t, err)
	assert.Equal(t, "Toyota", v.Make)
}

func TestCachedCatalog_CorruptEntryIsReplaced(t *testing.T) {
	c := newMockCache()
	c.data[cache.VehicleKey("1700000000002")] = []byte("{not json")
	catalog := vehicle.NewCachedCatalog(seededCatalog(t), c, time.Minute)

	v, err := catalog.GetVehicle(context.Background(), "1700000000002")
	require.NoError(t, err)
	assert.Equal(t, "Toyota", v.Make)
	assert.JSONEq(t, `{"id":"1700000000002","make":"Toyota","model":"Camry","year":2019}`,
		string(c.data[cache.VehicleKey("1700000000002")]))
}
