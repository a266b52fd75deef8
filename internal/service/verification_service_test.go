package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boma/internal/access"
	"boma/internal/apperr"
	"boma/internal/models"
)

func TestVerificationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	landlord := f.register(t, "lenny", models.RoleLandlord)
	admin := f.admin(t)

	_, err := f.svc.Verification.Submit(ctx, &landlord)
	assert.ErrorIs(t, err, ErrVerificationPending)

	rejected, err := f.svc.Verification.Review(ctx, &admin, landlord.ID, Decision{
		Status: models.VerificationStatusRejected,
		Notes:  "title deed unreadable",
	})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, rejected.ReviewerID)
	require.NotNil(t, rejected.ReviewedAt)
	assert.Equal(t, models.VerificationUnverified, f.userState(t, landlord.ID))

	reopened, err := f.svc.Verification.Submit(ctx, &landlord)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusPending, reopened.Status)
	assert.Equal(t, rejected.ID, reopened.ID)
	assert.Empty(t, reopened.Notes)
	assert.Nil(t, reopened.ReviewedAt)
	assert.Equal(t, models.VerificationPending, f.userState(t, landlord.ID))

	_, err = f.svc.Verification.Review(ctx, &admin, landlord.ID, Decision{Status: models.VerificationStatusVerified})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, f.userState(t, landlord.ID))

	_, err = f.svc.Verification.Submit(ctx, &landlord)
	assert.ErrorIs(t, err, ErrAlreadyVerified)

	mine, err := f.svc.Verification.Mine(ctx, &landlord)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusVerified, mine.Status)
}

func TestVerificationRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenant := f.register(t, "tina", "")
	landlord := f.register(t, "lenny", models.RoleLandlord)
	admin := f.admin(t)

	_, err := f.svc.Verification.Submit(ctx, &tenant)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = f.svc.Verification.Review(ctx, &landlord, landlord.ID, Decision{Status: models.VerificationStatusVerified})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = f.svc.Verification.Review(ctx, &admin, tenant.ID, Decision{Status: models.VerificationStatusVerified})
	assert.ErrorIs(t, err, ErrNotALandlord)

	_, err = f.svc.Verification.Review(ctx, &admin, landlord.ID, Decision{Status: models.VerificationStatusPending})
	requireCode(t, err, apperr.KindValidation, "invalid_decision")

	_, err = f.svc.Verification.Review(ctx, &admin, landlord.ID, Decision{
		Status: models.VerificationStatusRejected,
		Notes:  strings.Repeat("n", 301),
	})
	requireCode(t, err, apperr.KindValidation, "invalid_decision")
}

func TestVerificationReviewWithoutRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	tenant := f.register(t, "tina", "")

	// A tenant promoted to landlord has no request yet.
	promoted, err := f.svc.Users.ChangeRole(ctx, &admin, tenant.ID, string(models.RoleLandlord))
	require.NoError(t, err)

	req, err := f.svc.Verification.Review(ctx, &admin, promoted.ID, Decision{Status: models.VerificationStatusVerified})
	require.NoError(t, err)
	assert.Equal(t, promoted.ID, req.LandlordID)
	assert.Equal(t, models.VerificationVerified, f.userState(t, promoted.ID))
}

func TestListVerifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	first := f.register(t, "lenny", models.RoleLandlord)
	f.register(t, "larry", models.RoleLandlord)

	_, err := f.svc.Verification.Review(ctx, &admin, first.ID, Decision{Status: models.VerificationStatusVerified})
	require.NoError(t, err)

	all, err := f.svc.Verification.List(ctx, &admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.svc.Verification.List(ctx, &admin, models.VerificationStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.svc.Verification.List(ctx, &admin, "bogus")
	requireCode(t, err, apperr.KindValidation, "invalid_status")

	_, err = f.svc.Verification.List(ctx, &first, "")
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func (f *fixture) userState(t *testing.T, id string) models.VerificationState {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u.VerificationState
}
