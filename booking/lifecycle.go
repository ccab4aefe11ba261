package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/tulshipandey/parkride-backend/catalog"
)

var ErrInvalidWindow = errors.New("booking end must be after its start")

// Draft is the input to Service.Create. Price must already be frozen
// from a computed quote.
type Draft struct {
	UserID      string
	LocationID  string
	Slot        string
	StartTime   time.Time
	EndTime     time.Time
	Price       float64
	VehicleType string
	// Status may be left empty (defaults to confirmed) or set to
	// pending when the call site defers confirmation.
	Status Status
	// Route describes a shuttle journey ("Downtown Station to North
	// Terminal"); required when Shuttle is set.
	Route   string
	Shuttle *ShuttleDetails
}

// Service is the booking lifecycle state machine. All status changes
// go through it; the repository underneath merges blindly.
type Service struct {
	repo Repository
	cat  *catalog.Catalog

	// pendingCancel holds one token per booking id between the first
	// and second cancel call. Tokens expire so an abandoned cancel
	// does not linger forever.
	pendingCancel *cache.Cache

	now func() time.Time

	mu   sync.Mutex
	subs []func(Booking)
}

func NewService(repo Repository, cat *catalog.Catalog, cancelConfirmTTL time.Duration) *Service {
	return &Service{
		repo:          repo,
		cat:           cat,
		pendingCancel: cache.New(cancelConfirmTTL, 2*cancelConfirmTTL),
		now:           time.Now,
	}
}

// Subscribe registers fn to be called after every successful mutation.
// Callbacks run synchronously on the mutating goroutine.
func (s *Service) Subscribe(fn func(Booking)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Service) notify(b Booking) {
	s.mu.Lock()
	subs := make([]func(Booking), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(b)
	}
}

// Create persists a new booking in its entry state. The price must
// come from a previously computed quote and is frozen from here on.
func (s *Service) Create(ctx context.Context, d Draft) (Booking, error) {
	if d.Price <= 0 {
		return Booking{}, ErrPriceRequired
	}
	if !d.EndTime.After(d.StartTime) {
		return Booking{}, ErrInvalidWindow
	}

	status := d.Status
	if status == "" {
		status = StatusConfirmed
	}
	if status != StatusConfirmed && status != StatusPending {
		return Booking{}, fmt.Errorf("entry status %q: %w", status, ErrIllegalTransition)
	}

	b := Booking{
		ID:          uuid.New(),
		Reference:   newReference(),
		UserID:      d.UserID,
		Slot:        d.Slot,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Status:      status,
		Price:       d.Price,
		VehicleType: d.VehicleType,
		CreatedAt:   s.now(),
		Shuttle:     d.Shuttle,
	}

	if d.Shuttle != nil {
		if d.Route == "" {
			return Booking{}, errors.New("shuttle booking requires a route")
		}
		b.Location = d.Route
	} else {
		loc, err := s.cat.LocationByID(d.LocationID)
		if err != nil {
			return Booking{}, fmt.Errorf("location %q: %w", d.LocationID, err)
		}
		b.LocationID = loc.ID
		b.Location = loc.Name
		if b.Slot == "" {
			b.Slot = assignSlot(loc.Name)
		}
	}

	if err := s.repo.Create(ctx, &b); err != nil {
		return Booking{}, err
	}
	s.notify(b)
	return b, nil
}

// CheckIn moves a confirmed booking to active.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID, userID string) (Booking, error) {
	return s.transition(ctx, id, userID, StatusActive, StatusConfirmed)
}

// CheckOut moves an active booking to completed.
func (s *Service) CheckOut(ctx context.Context, id uuid.UUID, userID string) (Booking, error) {
	return s.transition(ctx, id, userID, StatusCompleted, StatusActive)
}

// Cancel is two-step. The first call records a pending-confirmation
// token and leaves the stored status untouched; a second call within
// the token's TTL commits the transition to canceled. The returned
// bool reports whether the cancellation was committed.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, userID string) (Booking, bool, error) {
	b, err := s.owned(ctx, id, userID)
	if err != nil {
		return Booking{}, false, err
	}
	if b.Status != StatusConfirmed && b.Status != StatusPending {
		return b, false, fmt.Errorf("cancel from %q: %w", b.Status, ErrIllegalTransition)
	}

	key := id.String()
	if _, awaiting := s.pendingCancel.Get(key); !awaiting {
		s.pendingCancel.SetDefault(key, s.now())
		return b, false, nil
	}
	s.pendingCancel.Delete(key)

	status := StatusCanceled
	updated, err := s.repo.Update(ctx, id, Update{Status: &status})
	if err != nil {
		return Booking{}, false, err
	}
	s.notify(updated)
	return updated, true, nil
}

// Delete removes the record entirely, unlike Cancel which retains it
// with status canceled. Allowed from any state.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	b, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.pendingCancel.Delete(id.String())
	s.notify(b)
	return nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, userID string, to Status, from Status) (Booking, error) {
	b, err := s.owned(ctx, id, userID)
	if err != nil {
		return Booking{}, err
	}
	if b.Status != from {
		return b, fmt.Errorf("%q to %q: %w", b.Status, to, ErrIllegalTransition)
	}
	updated, err := s.repo.Update(ctx, id, Update{Status: &to})
	if err != nil {
		return Booking{}, err
	}
	s.notify(updated)
	return updated, nil
}

func (s *Service) owned(ctx context.Context, id uuid.UUID, userID string) (Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if b.UserID != userID {
		return Booking{}, ErrNotAuthorized
	}
	return b, nil
}

// assignSlot derives a slot label from the location name's initial
// plus a bay number, matching the deployed signage scheme ("D12").
func assignSlot(locationName string) string {
	letter := byte('A')
	if locationName != "" {
		letter = locationName[0]
	}
	return fmt.Sprintf("%c%d", letter, rand.IntN(20)+1)
}

func newReference() string {
	return fmt.Sprintf("BKG-%d", 1000000+rand.IntN(9000000))
}
