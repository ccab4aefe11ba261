package booking

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps bookings in a process-local map. It backs
// tests and single-node deployments without a database. Mirroring the
// durable store, every write replaces the whole record: two writers
// racing on the same id end up last-write-wins.
type MemoryRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]Booking
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bookings: make(map[uuid.UUID]Booking)}
}

func (r *MemoryRepository) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = clone(*b)
	return nil
}

func (r *MemoryRepository) GetAll(_ context.Context) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, clone(b))
	}
	sortByStartTime(out)
	return out, nil
}

func (r *MemoryRepository) GetByUser(_ context.Context, userID string) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, clone(b))
		}
	}
	sortByStartTime(out)
	return out, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return clone(b), nil
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, upd Update) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	if upd.Status != nil {
		b.Status = *upd.Status
	}
	if upd.Slot != nil {
		b.Slot = *upd.Slot
	}
	if upd.StartTime != nil {
		b.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		b.EndTime = *upd.EndTime
	}
	if upd.SpecialRequests != nil && b.Shuttle != nil {
		sh := *b.Shuttle
		sh.SpecialRequests = *upd.SpecialRequests
		b.Shuttle = &sh
	}
	r.bookings[id] = b
	return clone(b), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

// clone detaches the shuttle pointer so callers cannot mutate stored
// records behind the lock.
func clone(b Booking) Booking {
	if b.Shuttle != nil {
		sh := *b.Shuttle
		b.Shuttle = &sh
	}
	return b
}

func sortByStartTime(bs []Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].StartTime.Equal(bs[j].StartTime) {
			return bs[i].CreatedAt.Before(bs[j].CreatedAt)
		}
		return bs[i].StartTime.Before(bs[j].StartTime)
	})
}
