package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boma/internal/access"
	"boma/internal/apperr"
	"boma/internal/events"
	"boma/internal/models"
)

func TestUserAdministration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	tenant := f.register(t, "tina", "")
	f.register(t, "lenny", models.RoleLandlord)

	all, err := f.svc.Users.List(ctx, &admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	landlords, err := f.svc.Users.List(ctx, &admin, "landlord")
	require.NoError(t, err)
	assert.Len(t, landlords, 1)

	_, err = f.svc.Users.List(ctx, &admin, "superuser")
	requireCode(t, err, apperr.KindValidation, "invalid_role")

	_, err = f.svc.Users.List(ctx, &tenant, "")
	assert.ErrorIs(t, err, access.ErrForbidden)

	got, err := f.svc.Users.Get(ctx, &admin, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "tina", got.Username)

	_, err = f.svc.Users.Get(ctx, &admin, "missing")
	requireCode(t, err, apperr.KindNotFound, "user_not_found")
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	tenant := f.register(t, "tina", "")

	_, err := f.svc.Users.ChangeRole(ctx, &admin, admin.ID, "tenant")
	assert.ErrorIs(t, err, ErrOwnRoleChange)

	_, err = f.svc.Users.ChangeRole(ctx, &admin, tenant.ID, "root")
	requireCode(t, err, apperr.KindValidation, "invalid_role")

	landlord, err := f.svc.Users.ChangeRole(ctx, &admin, tenant.ID, "landlord")
	require.NoError(t, err)
	assert.Equal(t, models.RoleLandlord, landlord.Role)
	assert.Equal(t, models.VerificationUnverified, landlord.VerificationState)

	stored, err := f.store.Users().GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleLandlord, stored.Role)

	_, err = f.svc.Users.ChangeRole(ctx, &tenant, admin.ID, "tenant")
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	tenant := f.register(t, "tina", "")

	assert.ErrorIs(t, f.svc.Users.Delete(ctx, &admin, admin.ID), ErrSelfDelete)
	require.NoError(t, f.svc.Users.Delete(ctx, &admin, tenant.ID))

	_, err := f.store.Users().GetByID(ctx, tenant.ID)
	assert.Error(t, err)

	evs := f.events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.UserDeleted, evs[0].Type)
	assert.Equal(t, tenant.ID, evs[0].UserID)

	err = f.svc.Users.Delete(ctx, &admin, tenant.ID)
	requireCode(t, err, apperr.KindNotFound, "user_not_found")
}
