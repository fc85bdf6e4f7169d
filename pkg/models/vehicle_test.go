package models_test

import (
	"encoding/json"
	"testing"

	"github.com/kiranshivaraju/garagelink/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVehicleRef_Object(t *testing.T) {
	ref, err := models.ParseVehicleRef([]byte(`{"id":"v1","make":"Toyota","model":"Camry","year":2019}`))
	require.NoError(t, err)

	inline, ok := ref.(models.InlineVehicle)
	require.True(t, ok)
	assert.Equal(t, "Toyota", inline.Vehicle.Make)
	assert.Equal(t, "Camry", inline.Vehicle.Model)
	assert.Equal(t, 2019, inline.Vehicle.Year)
}

func TestParseVehicleRef_String(t *testing.T) {
	ref, err := models.ParseVehicleRef([]byte(`"1700000000001"`))
	require.NoError(t, err)
	assert.Equal(t, models.VehicleID("1700000000001"), ref)
}

func TestParseVehicleRef_Empty(t *testing.T) {
	for _, raw := range []string{"", "null", `""`, "  "} {
		ref, err := models.ParseVehicleRef([]byte(raw))
		require.NoError(t, err, raw)
		assert.Nil(t, ref, raw)
	}
}

func TestParseVehicleRef_Unsupported(t *testing.T) {
	_, err := models.ParseVehicleRef([]byte(`42`))
	assert.Error(t, err)
}

func TestJobJSON_VehicleShapes(t *testing.T) {
	var byID models.Job
	require.NoError(t, json.Unmarshal([]byte(`{"id":"J1","status":"bidding","vehicle":"1700000000001"}`), &byID))
	assert.Equal(t, models.VehicleID("1700000000001"), byID.Vehicle)
	assert.Equal(t, models.JobStatusBidding, byID.Status)

	var inline models.Job
	require.NoError(t, json.Unmarshal([]byte(`{"id":"J2","vehicle":{"make":"Honda","model":"Civic"}}`), &inline))
	assert.Equal(t, models.InlineVehicle{Vehicle: models.Vehicle{Make: "Honda", Model: "Civic"}}, inline.Vehicle)

	out, err := json.Marshal(inline)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"vehicle":{`)
	assert.Contains(t, string(out), `"make":"Honda"`)

	var none models.Job
	require.NoError(t, json.Unmarshal([]byte(`{"id":"J3"}`), &none))
	assert.Nil(t, none.Vehicle)
}

func TestJobStatus_Partitions(t *testing.T) {
	assert.True(t, models.JobStatusBidding.AwaitingQuotes())
	assert.False(t, models.JobStatusAccepted.AwaitingQuotes())
	assert.True(t, models.JobStatusAccepted.ActivelyServiced())
	assert.True(t, models.JobStatusInProgress.ActivelyServiced())
	assert.False(t, models.JobStatusCompleted.ActivelyServiced())
	assert.True(t, models.JobStatusCompleted.HasMechanic())
	assert.False(t, models.JobStatus("archived").Valid())
}

func TestJob_DisplayTitle(t *testing.T) {
	assert.Equal(t, "Brake pads", (&models.Job{Title: "Brake pads", Category: "Brakes"}).DisplayTitle())
	assert.Equal(t, "Brakes - Pads", (&models.Job{Category: "Brakes", Subcategory: "Pads"}).DisplayTitle())
	assert.Equal(t, "Brakes", (&models.Job{Category: "Brakes"}).DisplayTitle())
}
