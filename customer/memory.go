package customer

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository backs tests and database-less deployments.
type MemoryRepository struct {
	mu        sync.RWMutex
	customers map[string]Customer // keyed by subject
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{customers: make(map[string]Customer)}
}

func (r *MemoryRepository) GetBySubject(_ context.Context, subject string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[subject]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) Create(_ context.Context, subject string) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := Customer{ID: uuid.New(), Subject: subject, CreatedAt: time.Now()}
	r.customers[subject] = c
	return &c, nil
}

func (r *MemoryRepository) UpdateProfile(_ context.Context, subject string, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[subject]
	if !ok {
		return ErrNotFound
	}
	c.Email = nullable(p.Email)
	c.Name = nullable(p.Name)
	c.VehiclePlate = nullable(p.VehiclePlate)
	r.customers[subject] = c
	return nil
}

func (r *MemoryRepository) AddPoints(_ context.Context, subject string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[subject]
	if !ok {
		return ErrNotFound
	}
	c.LoyaltyPoints += points
	r.customers[subject] = c
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
