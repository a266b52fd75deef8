// Package storetest holds behaviour tests every repository.Store backend must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boma/internal/ids"
	"boma/internal/models"
	"boma/internal/repository"
)

// Run executes the suite. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("user uniqueness", func(t *testing.T) { testUserUniqueness(t, newStore(t)) })
	t.Run("listings", func(t *testing.T) { testListings(t, newStore(t)) })
	t.Run("listing filters", func(t *testing.T) { testListingFilters(t, newStore(t)) })
	t.Run("reviews", func(t *testing.T) { testReviews(t, newStore(t)) })
	t.Run("concurrent duplicate reviews", func(t *testing.T) { testConcurrentReviews(t, newStore(t)) })
	t.Run("forum", func(t *testing.T) { testForum(t, newStore(t)) })
	t.Run("verifications", func(t *testing.T) { testVerifications(t, newStore(t)) })
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newUser(username string, role models.Role) models.User {
	ts := now()
	return models.User{
		ID:                ids.New(),
		Username:          username,
		Email:             username + "@example.com",
		PasswordHash:      "$2a$04$hash",
		Role:              role,
		VerificationState: models.VerificationUnverified,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}
}

func newListing(ownerID, title string, price int64, verified bool) models.Listing {
	ts := now()
	return models.Listing{
		ID:          ids.New(),
		Title:       title,
		Description: "desc of " + title,
		Address:     "1 Road, Nairobi",
		OwnerID:     ownerID,
		Verified:    verified,
		Images:      []string{"img/1.jpg"},
		Price:       price,
		Bedrooms:    2,
		Category:    "campus",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func testUsers(t *testing.T, s repository.Store) {
	ctx := context.Background()
	users := s.Users()

	u := newUser("alice", models.RoleTenant)
	require.NoError(t, users.Create(ctx, u))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.Equal(t, models.RoleTenant, got.Role)

	got, err = users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	u.Username = "alice2"
	u.Email = "alice2@example.com"
	u.UpdatedAt = now()
	require.NoError(t, users.UpdateProfile(ctx, u))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)

	require.NoError(t, users.UpdateRole(ctx, u.ID, models.RoleLandlord, models.VerificationUnverified))
	require.NoError(t, users.UpdateVerificationState(ctx, u.ID, models.VerificationPending))
	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleLandlord, got.Role)
	assert.Equal(t, models.VerificationPending, got.VerificationState)

	other := newUser("bob", models.RoleTenant)
	require.NoError(t, users.Create(ctx, other))

	all, err := users.List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	landlords, err := users.List(ctx, repository.UserFilter{Role: models.RoleLandlord})
	require.NoError(t, err)
	require.Len(t, landlords, 1)
	assert.Equal(t, u.ID, landlords[0].ID)

	require.NoError(t, users.Delete(ctx, u.ID))
	assert.ErrorIs(t, users.Delete(ctx, u.ID), repository.ErrNotFound)
	assert.ErrorIs(t, users.UpdateVerificationState(ctx, u.ID, models.VerificationVerified), repository.ErrNotFound)
}

func testUserUniqueness(t *testing.T, s repository.Store) {
	ctx := context.Background()
	users := s.Users()

	a := newUser("carol", models.RoleTenant)
	require.NoError(t, users.Create(ctx, a))

	sameEmail := newUser("carol2", models.RoleTenant)
	sameEmail.Email = a.Email
	assert.ErrorIs(t, users.Create(ctx, sameEmail), repository.ErrDuplicate)

	sameName := newUser("carol", models.RoleTenant)
	sameName.Email = "different@example.com"
	assert.ErrorIs(t, users.Create(ctx, sameName), repository.ErrDuplicate)

	b := newUser("dave", models.RoleTenant)
	require.NoError(t, users.Create(ctx, b))
	b.Email = a.Email
	assert.ErrorIs(t, users.UpdateProfile(ctx, b), repository.ErrDuplicate)
}

func testListings(t *testing.T, s repository.Store) {
	ctx := context.Background()
	listings := s.Listings()

	l := newListing("owner-1", "Studio", 500, false)
	require.NoError(t, listings.Create(ctx, l))

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.Title, got.Title)
	assert.Equal(t, l.Images, got.Images)
	assert.Equal(t, l.Price, got.Price)

	l.Title = "Renamed"
	l.Verified = true
	l.Images = []string{"a.jpg", "b.jpg"}
	require.NoError(t, listings.Update(ctx, l))
	got, err = listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.True(t, got.Verified)
	assert.Len(t, got.Images, 2)

	rating := models.RatingSummary{Count: 2, Safety: 4, Water: 3, Landlord: 5, Overall: 4}
	require.NoError(t, listings.UpdateRating(ctx, l.ID, rating))
	got, err = listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, rating, got.Rating)

	require.NoError(t, listings.Delete(ctx, l.ID))
	_, err = listings.GetByID(ctx, l.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, listings.Delete(ctx, l.ID), repository.ErrNotFound)
	assert.ErrorIs(t, listings.Update(ctx, l), repository.ErrNotFound)
}

func testListingFilters(t *testing.T, s repository.Store) {
	ctx := context.Background()
	listings := s.Listings()

	a := newListing("owner-1", "Cosy Studio", 500, true)
	a.CreatedAt = now().Add(-2 * time.Hour)
	b := newListing("owner-2", "Family House", 1500, false)
	b.Address = "4 Beach Rd, Mombasa"
	b.Bedrooms = 4
	b.Category = "job"
	b.CreatedAt = now().Add(-time.Hour)
	c := newListing("owner-1", "Loft 100% (new)", 900, true)
	c.CreatedAt = now()
	for _, l := range []models.Listing{a, b, c} {
		require.NoError(t, listings.Create(ctx, l))
	}

	maxPrice := int64(1000)
	verified := true
	threeBeds := 3

	tests := []struct {
		name   string
		filter repository.ListingFilter
		want   []string
	}{
		{"all newest first", repository.ListingFilter{}, []string{c.ID, b.ID, a.ID}},
		{"conjunction", repository.ListingFilter{MaxPrice: &maxPrice, Verified: &verified}, []string{c.ID, a.ID}},
		{"search", repository.ListingFilter{Search: "STUDIO"}, []string{a.ID}},
		{"search literal metacharacters", repository.ListingFilter{Search: "100% (new"}, []string{c.ID}},
		{"location", repository.ListingFilter{Location: "mombasa"}, []string{b.ID}},
		{"bedrooms", repository.ListingFilter{MinBedrooms: &threeBeds}, []string{b.ID}},
		{"category", repository.ListingFilter{Category: "JOB"}, []string{b.ID}},
		{"owner", repository.ListingFilter{OwnerID: "owner-1"}, []string{c.ID, a.ID}},
		{"limit", repository.ListingFilter{Limit: 2}, []string{c.ID, b.ID}},
		{"offset", repository.ListingFilter{Limit: 2, Offset: 2}, []string{a.ID}},
		{"offset past end", repository.ListingFilter{Offset: 10}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := listings.List(ctx, tt.filter)
			require.NoError(t, err)
			gotIDs := make([]string, 0, len(got))
			for _, l := range got {
				gotIDs = append(gotIDs, l.ID)
				assert.True(t, tt.filter.Matches(l))
			}
			assert.Equal(t, tt.want, gotIDs)
		})
	}
}

func newReview(listingID, userID string) models.Review {
	return models.Review{
		ID:             ids.New(),
		ListingID:      listingID,
		UserID:         userID,
		SafetyRating:   4,
		WaterRating:    3,
		LandlordRating: 5,
		Comment:        "fine",
		Anonymous:      true,
		CreatedAt:      now(),
	}
}

func testReviews(t *testing.T, s repository.Store) {
	ctx := context.Background()
	reviews := s.Reviews()

	r1 := newReview("listing-1", "user-1")
	require.NoError(t, reviews.Create(ctx, r1))
	assert.ErrorIs(t, reviews.Create(ctx, newReview("listing-1", "user-1")), repository.ErrDuplicate)

	require.NoError(t, reviews.Create(ctx, newReview("listing-2", "user-1")))
	require.NoError(t, reviews.Create(ctx, newReview("listing-1", "user-2")))

	got, err := reviews.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.LandlordRating)
	assert.True(t, got.Anonymous)

	byListing, err := reviews.ListByListing(ctx, "listing-1")
	require.NoError(t, err)
	assert.Len(t, byListing, 2)

	byUser, err := reviews.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	require.NoError(t, reviews.Delete(ctx, r1.ID))
	assert.ErrorIs(t, reviews.Delete(ctx, r1.ID), repository.ErrNotFound)

	// Deleting frees the slot.
	require.NoError(t, reviews.Create(ctx, newReview("listing-1", "user-1")))

	n, err := reviews.DeleteByListing(ctx, "listing-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = reviews.DeleteByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	empty, err := reviews.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testConcurrentReviews(t *testing.T, s repository.Store) {
	ctx := context.Background()
	reviews := s.Reviews()

	const attempts = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dups int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reviews.Create(ctx, newReview("listing-x", "user-x"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, repository.ErrDuplicate):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dups)
}

func testForum(t *testing.T, s repository.Store) {
	ctx := context.Background()
	forum := s.Forum()

	p := models.ForumPost{
		ID:        ids.New(),
		ListingID: "listing-1",
		UserID:    "user-1",
		Content:   "Water was off all week",
		Anonymous: true,
		Complaint: true,
		CreatedAt: now(),
	}
	require.NoError(t, forum.Create(ctx, p))

	other := p
	other.ID = ids.New()
	other.UserID = "user-2"
	other.Complaint = false
	require.NoError(t, forum.Create(ctx, other))

	posts, err := forum.ListByListing(ctx, "listing-1")
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	require.NoError(t, forum.SetResolved(ctx, p.ID, true))
	got, err := forum.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Resolved)
	assert.True(t, got.Complaint)

	n, err := forum.DeleteByUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, forum.Delete(ctx, p.ID))
	assert.ErrorIs(t, forum.Delete(ctx, p.ID), repository.ErrNotFound)
	assert.ErrorIs(t, forum.SetResolved(ctx, p.ID, false), repository.ErrNotFound)

	n, err = forum.DeleteByListing(ctx, "listing-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func testVerifications(t *testing.T, s repository.Store) {
	ctx := context.Background()
	vr := s.Verifications()

	ts := now()
	req := models.VerificationRequest{
		ID:         ids.New(),
		LandlordID: "landlord-1",
		Status:     models.VerificationStatusPending,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	require.NoError(t, vr.Create(ctx, req))

	dup := req
	dup.ID = ids.New()
	assert.ErrorIs(t, vr.Create(ctx, dup), repository.ErrDuplicate)

	got, err := vr.GetByLandlord(ctx, "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusPending, got.Status)
	assert.Nil(t, got.ReviewedAt)

	reviewedAt := now()
	got.Status = models.VerificationStatusRejected
	got.ReviewerID = "admin-1"
	got.Notes = "blurry documents"
	got.ReviewedAt = &reviewedAt
	got.UpdatedAt = reviewedAt
	require.NoError(t, vr.Update(ctx, got))

	got, err = vr.GetByLandlord(ctx, "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusRejected, got.Status)
	assert.Equal(t, "admin-1", got.ReviewerID)
	require.NotNil(t, got.ReviewedAt)

	pending, err := vr.List(ctx, models.VerificationStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := vr.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, vr.DeleteByLandlord(ctx, "landlord-1"))
	assert.ErrorIs(t, vr.DeleteByLandlord(ctx, "landlord-1"), repository.ErrNotFound)
	_, err = vr.GetByLandlord(ctx, "landlord-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
