package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedBooking(userID string, start time.Time) Booking {
	return Booking{
		ID:        uuid.New(),
		Reference: "BKG-1234567",
		UserID:    userID,
		Location:  "Downtown Central",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Status:    StatusConfirmed,
		Price:     30.00,
		CreatedAt: start.Add(-time.Hour),
	}
}

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	b := storedBooking("user-1", testStart)
	require.NoError(t, repo.Create(ctx, &b))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryGetByUserSortsByStartTime(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	later := storedBooking("user-1", testStart.Add(3*time.Hour))
	earlier := storedBooking("user-1", testStart)
	other := storedBooking("user-2", testStart)
	require.NoError(t, repo.Create(ctx, &later))
	require.NoError(t, repo.Create(ctx, &earlier))
	require.NoError(t, repo.Create(ctx, &other))

	got, err := repo.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, earlier.ID, got[0].ID)
	assert.Equal(t, later.ID, got[1].ID)
}

func TestMemoryRepositoryUpdateMergesSetFields(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	b := storedBooking("user-1", testStart)
	require.NoError(t, repo.Create(ctx, &b))

	status := StatusActive
	slot := "A7"
	got, err := repo.Update(ctx, b.ID, Update{Status: &status, Slot: &slot})
	require.NoError(t, err)

	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, "A7", got.Slot)
	// Untouched fields survive a partial update, the price above all.
	assert.Equal(t, b.Price, got.Price)
	assert.Equal(t, b.StartTime, got.StartTime)
	assert.Equal(t, b.Reference, got.Reference)

	_, err = repo.Update(ctx, uuid.New(), Update{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryUpdateShuttleRequests(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	b := storedBooking("user-1", testStart)
	b.Shuttle = &ShuttleDetails{ShuttleID: 1, ShuttleName: "Shuttle A"}
	require.NoError(t, repo.Create(ctx, &b))

	reqs := "Extra luggage"
	got, err := repo.Update(ctx, b.ID, Update{SpecialRequests: &reqs})
	require.NoError(t, err)
	require.NotNil(t, got.Shuttle)
	assert.Equal(t, "Extra luggage", got.Shuttle.SpecialRequests)

	// The returned record is detached from the stored one.
	got.Shuttle.SpecialRequests = "changed"
	again, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Extra luggage", again.Shuttle.SpecialRequests)
}

func TestMemoryRepositoryDelete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	b := storedBooking("user-1", testStart)
	require.NoError(t, repo.Create(ctx, &b))

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
