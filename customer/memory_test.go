package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetBySubject(ctx, "auth0|abc")
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := repo.Create(ctx, "auth0|abc")
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc", created.Subject)
	assert.Zero(t, created.LoyaltyPoints)

	require.NoError(t, repo.UpdateProfile(ctx, "auth0|abc", Profile{
		Email: "driver@example.com",
		Name:  "Test Driver",
	}))

	require.NoError(t, repo.AddPoints(ctx, "auth0|abc", 120))
	require.NoError(t, repo.AddPoints(ctx, "auth0|abc", 30))

	c, err := repo.GetBySubject(ctx, "auth0|abc")
	require.NoError(t, err)
	assert.Equal(t, "driver@example.com", c.Email.String)
	assert.True(t, c.Email.Valid)
	assert.False(t, c.VehiclePlate.Valid)
	assert.Equal(t, 150, c.LoyaltyPoints)
}

func TestMemoryRepositoryProfileUpdateRequiresCustomer(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	err := repo.UpdateProfile(ctx, "auth0|missing", Profile{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.AddPoints(ctx, "auth0|missing", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
