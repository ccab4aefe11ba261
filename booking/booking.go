// Package booking holds the booking record, its persistence interface
// and the lifecycle state machine that governs status transitions.
package booking

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("booking not found")
	// ErrUnavailable signals that the backing store cannot be reached.
	// Reads degrade to empty collections; writes surface this error.
	ErrUnavailable = errors.New("booking store unavailable")
	// ErrIllegalTransition is returned when an event is not valid for
	// the booking's current status. The status is left unchanged.
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrPriceRequired     = errors.New("booking requires a computed price")
	ErrNotAuthorized     = errors.New("not authorized to modify this booking")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Valid reports whether s is a member of the status set.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are defined out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Booking is a persisted parking or shuttle reservation. Price is
// frozen at creation and never recomputed by a transition.
type Booking struct {
	ID uuid.UUID `db:"id" json:"id"`
	// Reference is the short code shown to users and embedded in QR
	// codes (e.g. "BKG-1234567").
	Reference  string `db:"reference" json:"reference"`
	UserID     string `db:"user_id" json:"userId"`
	LocationID string `db:"location_id" json:"locationId,omitempty"`
	// Location is the display name of the parking location, or the
	// route description for a shuttle reservation.
	Location    string          `db:"location" json:"location"`
	Slot        string          `db:"slot" json:"slot,omitempty"`
	StartTime   time.Time       `db:"start_time" json:"startTime"`
	EndTime     time.Time       `db:"end_time" json:"endTime"`
	Status      Status          `db:"status" json:"status"`
	Price       float64         `db:"price" json:"price"`
	VehicleType string          `db:"vehicle_type" json:"vehicleType,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	Shuttle     *ShuttleDetails `db:"shuttle" json:"shuttle,omitempty"`
}

// IsShuttle reports whether the booking is a shuttle reservation
// rather than a parking slot.
func (b Booking) IsShuttle() bool {
	return b.Shuttle != nil
}

// shuttleDetailsSchemaVersion is bumped when the persisted shape of
// ShuttleDetails changes.
const shuttleDetailsSchemaVersion = 1

// ShuttleDetails carries the shuttle-specific fields of a reservation.
// It is persisted as a JSON document with an embedded schema version.
type ShuttleDetails struct {
	SchemaVersion   int    `json:"schemaVersion"`
	ShuttleID       int    `json:"shuttleId"`
	ShuttleName     string `json:"shuttleName"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

func (d ShuttleDetails) Value() (driver.Value, error) {
	d.SchemaVersion = shuttleDetailsSchemaVersion
	return json.Marshal(d)
}

func (d *ShuttleDetails) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return fmt.Errorf("cannot scan %T into ShuttleDetails", src)
}

// Update is a partial merge applied to a stored booking. Nil fields
// are left untouched. The store applies it blindly; transition rules
// live in Service.
type Update struct {
	Status          *Status
	Slot            *string
	StartTime       *time.Time
	EndTime         *time.Time
	SpecialRequests *string
}
