package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boma/internal/models"
	"boma/internal/repository"
	"boma/internal/repository/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) repository.Store { return New() })
}

func TestListingReadsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Listings().Create(ctx, models.Listing{ID: "l1", Images: []string{"a.jpg"}}))
	got, err := s.Listings().GetByID(ctx, "l1")
	require.NoError(t, err)
	got.Images[0] = "changed.jpg"

	again, err := s.Listings().GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", again.Images[0])
}

func TestListingUpdateKeepsRatingAndOwner(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Listings().Create(ctx, models.Listing{ID: "l1", OwnerID: "o1"}))
	require.NoError(t, s.Listings().UpdateRating(ctx, "l1", models.RatingSummary{Count: 3}))
	require.NoError(t, s.Listings().Update(ctx, models.Listing{ID: "l1", OwnerID: "intruder", Title: "new"}))

	got, err := s.Listings().GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.OwnerID)
	assert.Equal(t, 3, got.Rating.Count)
	assert.Equal(t, "new", got.Title)
}
