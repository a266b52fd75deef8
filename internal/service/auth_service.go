package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"boma/internal/apperr"
	"boma/internal/ids"
	"boma/internal/metrics"
	"boma/internal/models"
	"boma/internal/repository"
	"boma/internal/security"
)

var (
	ErrInvalidCredentials = apperr.Unauthenticated("invalid_credentials", "invalid email or password")
	ErrTooManyAttempts    = apperr.RateLimited("too_many_attempts", "too many failed login attempts, try again later")
)

// LoginThrottle limits failed logins per email. Implementations may be backed by redis.
type LoginThrottle interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type noThrottle struct{}

func (noThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }
func (noThrottle) RecordFailure(context.Context, string) error   { return nil }
func (noThrottle) Reset(context.Context, string) error           { return nil }

type AuthService struct {
	users         repository.UserRepository
	verifications repository.VerificationRepository
	tokens        *security.TokenService
	hasher        *security.PasswordHasher
	throttle      LoginThrottle
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	verifications repository.VerificationRepository,
	tokens *security.TokenService,
	hasher *security.PasswordHasher,
	throttle LoginThrottle,
	m *metrics.Metrics,
	log zerolog.Logger,
) *AuthService {
	if throttle == nil {
		throttle = noThrottle{}
	}
	return &AuthService{
		users:         users,
		verifications: verifications,
		tokens:        tokens,
		hasher:        hasher,
		throttle:      throttle,
		metrics:       m,
		log:           log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type LoginInput struct {
	Email    string
	Password string
}

// ProfileInput changes only the fields that are set.
type ProfileInput struct {
	Username *string
	Email    *string
	Password *string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	var fe apperr.FieldErrors
	username := normalizeUsername(input.Username, &fe)
	email := normalizeEmail(input.Email, &fe)
	checkPassword(input.Password, &fe)

	role := models.RoleTenant
	code := "invalid_registration"
	switch models.Role(strings.TrimSpace(input.Role)) {
	case "", models.RoleTenant:
	case models.RoleLandlord:
		role = models.RoleLandlord
	case models.RoleAdmin:
		fe.Add("role", "admin accounts cannot be self-registered")
		code = "role_not_allowed"
	default:
		fe.Add("role", "must be tenant or landlord")
	}
	if err := fe.Err(code, "registration rejected"); err != nil {
		return AuthResult{}, err
	}

	if err := s.ensureUnique(ctx, "", username, email); err != nil {
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}

	now := nowUTC()
	user := models.User{
		ID:                ids.New(),
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
		VerificationState: models.VerificationUnverified,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if role == models.RoleLandlord {
		user.VerificationState = models.VerificationPending
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResult{}, apperr.Conflict("account_exists", "username or email already registered")
		}
		return AuthResult{}, apperr.Internal(err)
	}

	if role == models.RoleLandlord {
		req := models.VerificationRequest{
			ID:         ids.New(),
			LandlordID: user.ID,
			Status:     models.VerificationStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.verifications.Create(ctx, req); err != nil {
			// The landlord can still resubmit later.
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("open verification request failed")
		}
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return AuthResult{}, apperr.Validation("invalid_login", "email and password are required")
	}

	blocked, err := s.throttle.Blocked(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle unavailable")
	}
	if blocked {
		s.metrics.ObserveLogin("throttled")
		return AuthResult{}, ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.Equalize(input.Password)
		return AuthResult{}, s.loginFailed(ctx, email)
	}
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	if !ok {
		return AuthResult{}, s.loginFailed(ctx, email)
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle reset failed")
	}
	s.metrics.ObserveLogin("success")
	return s.issue(user)
}

func (s *AuthService) loginFailed(ctx context.Context, email string) error {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle record failed")
	}
	s.metrics.ObserveLogin("failure")
	return ErrInvalidCredentials
}

// Me returns the caller resolved by the session middleware.
func (s *AuthService) Me(actor *models.User) (models.User, error) {
	if actor == nil {
		return models.User{}, apperr.Unauthenticated("authentication_required", "authentication required")
	}
	return *actor, nil
}

// UpdateProfile applies the set fields and returns a freshly issued token.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *models.User, input ProfileInput) (AuthResult, error) {
	if actor == nil {
		return AuthResult{}, apperr.Unauthenticated("authentication_required", "authentication required")
	}
	if input.Username == nil && input.Email == nil && input.Password == nil {
		return AuthResult{}, apperr.Validation("empty_update", "nothing to update")
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return AuthResult{}, storeErr(err, errUserNotFound)
	}

	var fe apperr.FieldErrors
	if input.Username != nil {
		user.Username = normalizeUsername(*input.Username, &fe)
	}
	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email, &fe)
	}
	if input.Password != nil {
		checkPassword(*input.Password, &fe)
	}
	if err := fe.Err("invalid_profile", "profile update rejected"); err != nil {
		return AuthResult{}, err
	}

	if err := s.ensureUnique(ctx, user.ID, user.Username, user.Email); err != nil {
		return AuthResult{}, err
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return AuthResult{}, apperr.Internal(err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = nowUTC()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResult{}, apperr.Conflict("account_exists", "username or email already registered")
		}
		return AuthResult{}, storeErr(err, errUserNotFound)
	}
	return s.issue(user)
}

// EnsureAdmin creates the bootstrap administrator unless the email is already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	var fe apperr.FieldErrors
	username = normalizeUsername(username, &fe)
	email = normalizeEmail(email, &fe)
	checkPassword(password, &fe)
	if err := fe.Err("invalid_bootstrap_admin", "bootstrap admin rejected"); err != nil {
		return err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			s.log.Warn().Str("email", email).Msg("bootstrap admin email belongs to a non-admin user")
		}
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return apperr.Internal(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Internal(err)
	}
	now := nowUTC()
	admin := models.User{
		ID:                ids.New(),
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		Role:              models.RoleAdmin,
		VerificationState: models.VerificationVerified,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return apperr.Internal(err)
	}
	s.log.Info().Str("user_id", admin.ID).Msg("bootstrap admin created")
	return nil
}

// ensureUnique reports a conflict when username or email belongs to a user other than selfID.
func (s *AuthService) ensureUnique(ctx context.Context, selfID, username, email string) error {
	if u, err := s.users.FindByEmail(ctx, email); err == nil {
		if u.ID != selfID {
			return apperr.Conflict("email_taken", "email already registered")
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperr.Internal(err)
	}

	if u, err := s.users.FindByUsername(ctx, username); err == nil {
		if u.ID != selfID {
			return apperr.Conflict("username_taken", "username already taken")
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperr.Internal(err)
	}
	return nil
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	return AuthResult{Token: tok.Token, ExpiresAt: tok.ExpiresAt, User: user}, nil
}
