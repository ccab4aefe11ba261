package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence primitive for bookings. It merges and
// stores records without validating status transitions; that is the
// Service's job. Concurrent writers race last-write-wins; there is no
// revision check. Business logic must never reach the store except
// through this interface.
type Repository interface {
	// Create persists a new record. The caller supplies the full
	// booking including its generated ID.
	Create(ctx context.Context, b *Booking) error
	GetAll(ctx context.Context) ([]Booking, error)
	// GetByUser returns the user's bookings ordered by start time.
	GetByUser(ctx context.Context, userID string) ([]Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (Booking, error)
	// Update merges the non-nil fields of upd into the stored record
	// and returns the result.
	Update(ctx context.Context, id uuid.UUID, upd Update) (Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
