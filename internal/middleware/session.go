package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"boma/internal/apperr"
	"boma/internal/models"
	"boma/internal/repository"
	"boma/internal/security"
)

const currentUserKey = "current_user"

var (
	ErrInvalidAuthorizationHeader = apperr.Unauthenticated("invalid_authorization_header", "authorization header must be 'Bearer <token>'")
	ErrTokenMalformed             = apperr.Unauthenticated("token_malformed", "session token is malformed")
	ErrTokenInvalidSignature      = apperr.Unauthenticated("token_invalid_signature", "session token signature is invalid")
	ErrTokenExpired               = apperr.Unauthenticated("token_expired", "session token has expired")
	ErrUserNotFound               = apperr.Unauthenticated("user_not_found", "session user no longer exists")
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Session resolves the caller from a bearer token. Requests without an
// Authorization header continue anonymously; a header that does not yield a
// live user is rejected with 401.
func Session(tokens TokenVerifier, users UserLookup, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortWith(c, ErrInvalidAuthorizationHeader)
			return
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			abortWith(c, tokenError(err))
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if errors.Is(err, repository.ErrNotFound) {
			abortWith(c, ErrUserNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("session user lookup failed")
			abortWith(c, apperr.Internal(err))
			return
		}

		c.Set(currentUserKey, &user)
		c.Next()
	}
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, security.ErrTokenInvalidSignature):
		return ErrTokenInvalidSignature
	default:
		return ErrTokenMalformed
	}
}

// CurrentUser returns the caller resolved by Session, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func abortWith(c *gin.Context, err error) {
	status, body := apperr.Response(err)
	c.AbortWithStatusJSON(status, body)
}
