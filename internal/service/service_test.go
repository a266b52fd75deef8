package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"boma/internal/apperr"
	"boma/internal/config"
	"boma/internal/events"
	"boma/internal/ids"
	"boma/internal/models"
	"boma/internal/repository/memstore"
	"boma/internal/security"
)

type fixture struct {
	svc    *Services
	store  *memstore.Store
	events *events.Recorder
	tokens *security.TokenService
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	hasher, err := security.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	store := memstore.New()
	rec := &events.Recorder{}
	tokens := security.NewTokenService("service-test-secret", 0)
	d := Deps{
		Store:    store,
		Tokens:   tokens,
		Hasher:   hasher,
		Events:   rec,
		Listings: config.ListingsConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return &fixture{svc: New(d), store: store, events: rec, tokens: tokens}
}

func (f *fixture) register(t *testing.T, username string, role models.Role) models.User {
	t.Helper()
	res, err := f.svc.Auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
		Role:     string(role),
	})
	require.NoError(t, err)
	return res.User
}

func (f *fixture) admin(t *testing.T) models.User {
	t.Helper()
	u := models.User{
		ID:                ids.New(),
		Username:          "root-" + ids.New()[19:],
		Email:             ids.New() + "@admin.example.com",
		PasswordHash:      "x",
		Role:              models.RoleAdmin,
		VerificationState: models.VerificationVerified,
		CreatedAt:         nowUTC(),
		UpdatedAt:         nowUTC(),
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) listing(t *testing.T, owner models.User, in ListingInput) models.Listing {
	t.Helper()
	if in.Title == "" {
		in.Title = "Two bedroom near campus"
	}
	if in.Address == "" {
		in.Address = "12 Moi Avenue, Nairobi"
	}
	l, err := f.svc.Listings.Create(context.Background(), &owner, in)
	require.NoError(t, err)
	return l
}

func (f *fixture) eventTypes() []events.Type {
	var out []events.Type
	for _, ev := range f.events.Events() {
		out = append(out, ev.Type)
	}
	return out
}

func requireCode(t *testing.T, err error, kind apperr.Kind, code string) {
	t.Helper()
	require.Error(t, err)
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, kind, e.Kind, "kind of %v", err)
	require.Equal(t, code, e.Code)
}

func ptr[T any](v T) *T {
	return &v
}
