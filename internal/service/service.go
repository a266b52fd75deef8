package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"boma/internal/apperr"
	"boma/internal/config"
	"boma/internal/events"
	"boma/internal/metrics"
	"boma/internal/repository"
	"boma/internal/security"
)

var (
	errUserNotFound         = apperr.NotFound("user_not_found", "user not found")
	errListingNotFound      = apperr.NotFound("listing_not_found", "listing not found")
	errReviewNotFound       = apperr.NotFound("review_not_found", "review not found")
	errPostNotFound         = apperr.NotFound("post_not_found", "forum post not found")
	errVerificationNotFound = apperr.NotFound("verification_not_found", "verification request not found")
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store    repository.Store
	Tokens   *security.TokenService
	Hasher   *security.PasswordHasher
	Throttle LoginThrottle
	Events   events.Publisher
	Metrics  *metrics.Metrics
	Listings config.ListingsConfig
	Log      zerolog.Logger
}

type Services struct {
	Auth         *AuthService
	Listings     *ListingService
	Reviews      *ReviewService
	Forum        *ForumService
	Verification *VerificationService
	Users        *UserService
}

func New(d Deps) *Services {
	if d.Throttle == nil {
		d.Throttle = noThrottle{}
	}
	if d.Events == nil {
		d.Events = &events.Recorder{}
	}
	sink := eventSink{pub: d.Events, metrics: d.Metrics, log: d.Log}

	return &Services{
		Auth:         NewAuthService(d.Store.Users(), d.Store.Verifications(), d.Tokens, d.Hasher, d.Throttle, d.Metrics, d.Log),
		Listings:     NewListingService(d.Store.Listings(), sink, d.Listings, d.Log),
		Reviews:      NewReviewService(d.Store.Reviews(), d.Store.Listings(), sink, d.Log),
		Forum:        NewForumService(d.Store.Forum(), d.Store.Listings(), d.Log),
		Verification: NewVerificationService(d.Store.Verifications(), d.Store.Users(), d.Log),
		Users:        NewUserService(d.Store.Users(), sink, d.Log),
	}
}

// storeErr maps repository.ErrNotFound to notFound and anything else to an internal error.
func storeErr(err error, notFound *apperr.Error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return apperr.Internal(err)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

type eventSink struct {
	pub     events.Publisher
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// publish never fails the caller; derived data is reconciled by the scheduled job.
func (s eventSink) publish(ctx context.Context, ev events.Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = nowUTC()
	}
	err := s.pub.Publish(ctx, ev)
	s.metrics.ObservePublish(string(ev.Type), err)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("event", string(ev.Type)).
			Str("listing_id", ev.ListingID).
			Str("user_id", ev.UserID).
			Msg("publish event failed")
	}
}
