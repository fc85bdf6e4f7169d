package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Vehicle is a record owned by the external vehicle registry.
type Vehicle struct {
	ID           string `db:"id"            json:"id"`
	OwnerID      string `db:"owner_id"      json:"owner_id,omitempty"`
	Make         string `db:"make"          json:"make"`
	Model        string `db:"model"         json:"model"`
	Year         int    `db:"year"          json:"year,omitempty"`
	Trim         string `db:"trim"          json:"trim,omitempty"`
	Color        string `db:"color"         json:"color,omitempty"`
	LicensePlate string `db:"license_plate" json:"license_plate,omitempty"`
}

// VehicleRef is how a job points at its vehicle: either an inline record
// (InlineVehicle) or an identifier into the catalog (VehicleID).
// A nil VehicleRef means the job has no vehicle.
type VehicleRef interface {
	vehicleRef()
}

// InlineVehicle is a vehicle record stored directly on the job.
type InlineVehicle struct {
	Vehicle Vehicle
}

// VehicleID is an opaque reference into the vehicle catalog. Older jobs may
// also carry a free-text label here.
type VehicleID string

func (InlineVehicle) vehicleRef() {}
func (VehicleID) vehicleRef()     {}

// ParseVehicleRef decodes the stored JSON shape of a vehicle reference:
// an object is an inline record, a string is an identifier, null or empty input is nil.
func ParseVehicleRef(raw []byte) (VehicleRef, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, fmt.Errorf("decode vehicle id: %w", err)
		}
		if id == "" {
			return nil, nil
		}
		return VehicleID(id), nil
	case '{':
		var v Vehicle
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode inline vehicle: %w", err)
		}
		return InlineVehicle{Vehicle: v}, nil
	default:
		return nil, fmt.Errorf("unsupported vehicle reference %q", raw)
	}
}

// MarshalVehicleRef encodes ref into the shape ParseVehicleRef accepts.
func MarshalVehicleRef(ref VehicleRef) ([]byte, error) {
	switch r := ref.(type) {
	case nil:
		return []byte("null"), nil
	case InlineVehicle:
		return json.Marshal(r.Vehicle)
	case VehicleID:
		return json.Marshal(string(r))
	default:
		return nil, fmt.Errorf("unsupported vehicle reference %T", ref)
	}
}
