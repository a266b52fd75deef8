package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boma/internal/apperr"
	"boma/internal/models"
	"boma/internal/repository"
)

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Auth.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "  Alice@Example.com ",
		Password: "wonderland",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.Equal(t, models.RoleTenant, reg.User.Role)
	assert.Equal(t, models.VerificationUnverified, reg.User.VerificationState)
	assert.NotEqual(t, "wonderland", reg.User.PasswordHash)

	sub, err := f.tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sub)

	login, err := f.svc.Auth.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.False(t, login.ExpiresAt.IsZero())

	stored, err := f.store.Users().GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "wonderland", stored.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
		code  string
		field string
	}{
		{"short username", RegisterInput{Username: "al", Email: "a@b.co", Password: "secret1"}, "invalid_registration", "username"},
		{"bad username chars", RegisterInput{Username: "al ice", Email: "a@b.co", Password: "secret1"}, "invalid_registration", "username"},
		{"bad email", RegisterInput{Username: "alice", Email: "alice@", Password: "secret1"}, "invalid_registration", "email"},
		{"short password", RegisterInput{Username: "alice", Email: "a@b.co", Password: "12345"}, "invalid_registration", "password"},
		{"unknown role", RegisterInput{Username: "alice", Email: "a@b.co", Password: "secret1", Role: "owner"}, "invalid_registration", "role"},
		{"admin role", RegisterInput{Username: "alice", Email: "a@b.co", Password: "secret1", Role: "admin"}, "role_not_allowed", "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Auth.Register(ctx, tt.input)
			requireCode(t, err, apperr.KindValidation, tt.code)

			var e *apperr.Error
			require.ErrorAs(t, err, &e)
			require.Len(t, e.Fields, 1)
			assert.Equal(t, tt.field, e.Fields[0].Field)
		})
	}
}

func TestRegisterReportsEveryField(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Auth.Register(context.Background(), RegisterInput{Username: "x", Email: "nope", Password: "1"})

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Len(t, e.Fields, 3)
}

func TestRegisterConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "")

	_, err := f.svc.Auth.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "secret123"})
	requireCode(t, err, apperr.KindConflict, "email_taken")

	_, err = f.svc.Auth.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret123"})
	requireCode(t, err, apperr.KindConflict, "username_taken")
}

func TestRegisterLandlordOpensVerification(t *testing.T) {
	f := newFixture(t)
	landlord := f.register(t, "lenny", models.RoleLandlord)
	assert.Equal(t, models.VerificationPending, landlord.VerificationState)

	req, err := f.store.Verifications().GetByLandlord(context.Background(), landlord.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusPending, req.Status)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "")

	_, errUnknown := f.svc.Auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	_, errWrong := f.svc.Auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "not-it"})

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())

	_, err := f.svc.Auth.Login(ctx, LoginInput{Email: "", Password: ""})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

type countingThrottle struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
	err      error
}

func (c *countingThrottle) Blocked(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	return c.failures[key] >= c.max, nil
}

func (c *countingThrottle) RecordFailure(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures == nil {
		c.failures = map[string]int{}
	}
	c.failures[key]++
	return c.err
}

func (c *countingThrottle) Reset(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.failures, key)
	return c.err
}

func TestLoginThrottled(t *testing.T) {
	throttle := &countingThrottle{max: 2}
	f := newFixture(t, func(d *Deps) { d.Throttle = throttle })
	ctx := context.Background()
	f.register(t, "alice", "")

	for i := 0; i < 2; i++ {
		_, err := f.svc.Auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong-one"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := f.svc.Auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "secret123"})
	requireCode(t, err, apperr.KindRateLimited, "too_many_attempts")

	throttle.mu.Lock()
	throttle.failures = nil
	throttle.mu.Unlock()

	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
}

func TestLoginThrottleFailsOpen(t *testing.T) {
	throttle := &countingThrottle{max: 1, err: errors.New("redis down")}
	f := newFixture(t, func(d *Deps) { d.Throttle = throttle })
	f.register(t, "alice", "")

	_, err := f.svc.Auth.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "")
	f.register(t, "bob", "")

	res, err := f.svc.Auth.UpdateProfile(ctx, &alice, ProfileInput{Username: ptr("alice.k")})
	require.NoError(t, err)
	assert.Equal(t, "alice.k", res.User.Username)
	assert.NotEmpty(t, res.Token)

	_, err = f.svc.Auth.UpdateProfile(ctx, &alice, ProfileInput{Email: ptr("bob@example.com")})
	requireCode(t, err, apperr.KindConflict, "email_taken")

	_, err = f.svc.Auth.UpdateProfile(ctx, &alice, ProfileInput{})
	requireCode(t, err, apperr.KindValidation, "empty_update")

	_, err = f.svc.Auth.UpdateProfile(ctx, &alice, ProfileInput{Password: ptr("new-password")})
	require.NoError(t, err)
	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "new-password"})
	require.NoError(t, err)

	_, err = f.svc.Auth.UpdateProfile(ctx, nil, ProfileInput{Username: ptr("ghost")})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Auth.EnsureAdmin(ctx, "admin", "Admin@Example.com", "super-secret"))
	require.NoError(t, f.svc.Auth.EnsureAdmin(ctx, "admin", "admin@example.com", "super-secret"))

	admins, err := f.store.Users().List(ctx, repository.UserFilter{Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, models.VerificationVerified, admins[0].VerificationState)

	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: "admin@example.com", Password: "super-secret"})
	require.NoError(t, err)
}
