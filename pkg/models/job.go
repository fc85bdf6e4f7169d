// Package models contains shared data models used across the garagelink codebase.
package models

import (
	"encoding/json"
	"time"
)

// JobStatus is a position in the job lifecycle.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusPosted     JobStatus = "posted"
	JobStatusBidding    JobStatus = "bidding"
	JobStatusAccepted   JobStatus = "accepted"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// AllJobStatuses lists every status in lifecycle order.
var AllJobStatuses = []JobStatus{
	JobStatusPending,
	JobStatusPosted,
	JobStatusBidding,
	JobStatusAccepted,
	JobStatusInProgress,
	JobStatusCompleted,
	JobStatusCancelled,
}

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	for _, known := range AllJobStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// AwaitingQuotes reports whether the job is still open for quotes.
func (s JobStatus) AwaitingQuotes() bool {
	return s == JobStatusPending || s == JobStatusPosted || s == JobStatusBidding
}

// ActivelyServiced reports whether a mechanic is working the job.
func (s JobStatus) ActivelyServiced() bool {
	return s == JobStatusAccepted || s == JobStatusInProgress
}

// HasMechanic reports whether a job in this status must carry a selected mechanic.
func (s JobStatus) HasMechanic() bool {
	return s == JobStatusAccepted || s == JobStatusInProgress || s == JobStatusCompleted
}

const (
	ServiceTypeMobile = "mobile"
	ServiceTypeShop   = "shop"
)

const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Job is a customer-submitted service request tracked through its status lifecycle.
// Jobs are never deleted; cancelled is terminal and retained for history.
type Job struct {
	ID                 string     `db:"id"                   json:"id"`
	CustomerID         string     `db:"customer_id"          json:"customer_id"`
	SelectedMechanicID *string    `db:"selected_mechanic_id" json:"selected_mechanic_id,omitempty"`
	Status             JobStatus  `db:"status"               json:"status"`
	Vehicle            VehicleRef `db:"-"                    json:"-"`
	Title              string     `db:"title"                json:"title"`
	Description        string     `db:"description"          json:"description,omitempty"`
	Price              *float64   `db:"price"                json:"price,omitempty"`
	Category           string     `db:"category"             json:"category"`
	Subcategory        string     `db:"subcategory"          json:"subcategory,omitempty"`
	ServiceType        string     `db:"service_type"         json:"service_type"`
	Urgency            string     `db:"urgency"              json:"urgency,omitempty"`
	CreatedAt          time.Time  `db:"created_at"           json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"           json:"updated_at"`
}

// DisplayTitle returns the title, falling back to category and subcategory.
func (j *Job) DisplayTitle() string {
	if j.Title != "" {
		return j.Title
	}
	if j.Subcategory != "" {
		if j.Category == "" {
			return j.Subcategory
		}
		return j.Category + " - " + j.Subcategory
	}
	return j.Category
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	c := *j
	if j.SelectedMechanicID != nil {
		id := *j.SelectedMechanicID
		c.SelectedMechanicID = &id
	}
	if j.Price != nil {
		p := *j.Price
		c.Price = &p
	}
	return &c
}

type jobJSON Job

// MarshalJSON writes the vehicle reference in its stored shape under "vehicle".
func (j Job) MarshalJSON() ([]byte, error) {
	vehicle, err := MarshalVehicleRef(j.Vehicle)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		jobJSON
		Vehicle json.RawMessage `json:"vehicle"`
	}{jobJSON: jobJSON(j), Vehicle: vehicle})
}

// UnmarshalJSON accepts either an inline vehicle object or a vehicle id string.
func (j *Job) UnmarshalJSON(data []byte) error {
	var aux struct {
		*jobJSON
		Vehicle json.RawMessage `json:"vehicle"`
	}
	aux.jobJSON = (*jobJSON)(j)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ref, err := ParseVehicleRef(aux.Vehicle)
	if err != nil {
		return err
	}
	j.Vehicle = ref
	return nil
}
