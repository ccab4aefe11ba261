// Package customer holds the owner profile attached to bookings:
// contact details, vehicle plate and loyalty points.
package customer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("customer not found")

type Customer struct {
	ID uuid.UUID `db:"id"`
	// Subject is the identity provider's stable user id (JWT sub).
	Subject       string         `db:"subject"`
	Email         sql.NullString `db:"email"`
	Name          sql.NullString `db:"name"`
	VehiclePlate  sql.NullString `db:"vehicle_plate"`
	LoyaltyPoints int            `db:"loyalty_points"`
	CreatedAt     time.Time      `db:"created_at"`
}

// Profile is the caller-editable subset of a customer record.
type Profile struct {
	Email        string
	Name         string
	VehiclePlate string
}

type Repository interface {
	GetBySubject(ctx context.Context, subject string) (*Customer, error)
	Create(ctx context.Context, subject string) (*Customer, error)
	UpdateProfile(ctx context.Context, subject string, p Profile) error
	// AddPoints credits loyalty points, earned on completed bookings.
	AddPoints(ctx context.Context, subject string, points int) error
}
