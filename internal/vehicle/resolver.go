// Package vehicle resolves the vehicle a job points at and formats it for display.
// Nothing in this package returns an error: unresolvable references degrade to
// the original reference or an empty label.
package vehicle

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/garagelink/internal/store"
	"github.com/kiranshivaraju/garagelink/pkg/models"
)

// UnknownLabel is the display label for a catalog id that could not be resolved.
const UnknownLabel = "Unknown vehicle"

// minOpaqueIDLen is the shortest digit string treated as a catalog id.
// Catalog ids are millisecond timestamps, so anything shorter is a label.
const minOpaqueIDLen = 10

// Catalog looks up vehicle records by id.
type Catalog interface {
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
}

// Resolve returns the full record for ref when it can be found.
//
// Inline records are returned unchanged. Catalog ids are looked up; when the
// lookup misses or fails the original id is returned so the caller can still
// render a fallback.
func Resolve(ctx context.Context, ref models.VehicleRef, catalog Catalog) models.VehicleRef {
	switch r := ref.(type) {
	case nil:
		return nil
	case models.InlineVehicle:
		return r
	case models.VehicleID:
		if catalog == nil || !IsOpaqueID(string(r)) {
			return r
		}
		v, err := catalog.GetVehicle(ctx, string(r))
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				slog.Warn("vehicle lookup failed", "vehicle_id", string(r), "error", err)
			}
			return r
		}
		return models.InlineVehicle{Vehicle: *v}
	default:
		return ref
	}
}

// Format produces a human-readable label such as "2019 Toyota Camry".
func Format(ref models.VehicleRef) string {
	switch r := ref.(type) {
	case models.InlineVehicle:
		return label(r.Vehicle)
	case models.VehicleID:
		if IsOpaqueID(string(r)) {
			return UnknownLabel
		}
		return strings.TrimSpace(string(r))
	default:
		return ""
	}
}

func label(v models.Vehicle) string {
	parts := make([]string, 0, 3)
	if v.Year > 0 {
		parts = append(parts, strconv.Itoa(v.Year))
	}
	if m := strings.TrimSpace(v.Make); m != "" {
		parts = append(parts, m)
	}
	if m := strings.TrimSpace(v.Model); m != "" {
		parts = append(parts, m)
	}
	if len(parts) == 0 || (len(parts) == 1 && v.Year > 0) {
		return ""
	}
	return strings.Join(parts, " ")
}

// IsOpaqueID reports whether s has the shape of a generated catalog id.
func IsOpaqueID(s string) bool {
	if len(s) < minOpaqueIDLen {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Resolver binds a catalog so callers can resolve and describe in one step.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a Resolver backed by catalog. A nil catalog resolves
// inline records only.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

func (r *Resolver) Resolve(ctx context.Context, ref models.VehicleRef) models.VehicleRef {
	return Resolve(ctx, ref, r.catalog)
}

// Describe resolves ref and formats the result.
func (r *Resolver) Describe(ctx context.Context, ref models.VehicleRef) string {
	return Format(r.Resolve(ctx, ref))
}
