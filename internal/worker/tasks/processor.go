// Package tasks applies domain events to the store: rating aggregates and
// cascading deletes.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"boma/internal/events"
	"boma/internal/metrics"
	"boma/internal/models"
	"boma/internal/repository"
)

type Processor struct {
	store   repository.Store
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

var _ events.Handler = (*Processor)(nil)

func NewProcessor(store repository.Store, m *metrics.Metrics, logger zerolog.Logger) *Processor {
	return &Processor{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Handle is idempotent for every event type, so redelivered entries are safe.
func (p *Processor) Handle(ctx context.Context, ev events.Event) error {
	start := time.Now()
	var err error
	switch ev.Type {
	case events.ReviewCreated, events.ReviewDeleted:
		err = p.recomputeRating(ctx, ev.ListingID)
	case events.ListingDeleted:
		err = p.handleListingDeleted(ctx, ev.ListingID)
	case events.UserDeleted:
		err = p.handleUserDeleted(ctx, ev.UserID)
	case events.RatingsReconcile:
		err = p.handleReconcile(ctx)
	default:
		p.logger.Warn().Str("type", string(ev.Type)).Msg("unknown event type")
		return nil
	}

	p.metrics.ObserveHandled(string(ev.Type), err)
	l := p.logger.Debug()
	if err != nil {
		l = p.logger.Error().Err(err)
	}
	l.Str("type", string(ev.Type)).
		Str("listing_id", ev.ListingID).
		Str("user_id", ev.UserID).
		Dur("took", time.Since(start)).
		Msg("event handled")
	return err
}

// recomputeRating rebuilds a listing's summary from its reviews. A listing
// deleted in the meantime is not an error.
func (p *Processor) recomputeRating(ctx context.Context, listingID string) error {
	if listingID == "" {
		return fmt.Errorf("recompute rating: empty listing id")
	}
	reviews, err := p.store.Reviews().ListByListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("list reviews for %s: %w", listingID, err)
	}
	err = p.store.Listings().UpdateRating(ctx, listingID, models.Summarize(reviews))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("update rating for %s: %w", listingID, err)
	}
	return nil
}

func (p *Processor) handleListingDeleted(ctx context.Context, listingID string) error {
	reviews, err := p.store.Reviews().DeleteByListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("delete reviews of %s: %w", listingID, err)
	}
	posts, err := p.store.Forum().DeleteByListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("delete posts of %s: %w", listingID, err)
	}
	p.logger.Info().
		Str("listing_id", listingID).
		Int64("reviews", reviews).
		Int64("posts", posts).
		Msg("listing cascade complete")
	return nil
}

func (p *Processor) handleUserDeleted(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user cascade: empty user id")
	}

	owned, err := p.store.Listings().List(ctx, repository.ListingFilter{OwnerID: userID})
	if err != nil {
		return fmt.Errorf("list listings of %s: %w", userID, err)
	}
	for _, l := range owned {
		if err := p.store.Listings().Delete(ctx, l.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("delete listing %s: %w", l.ID, err)
		}
		if err := p.handleListingDeleted(ctx, l.ID); err != nil {
			return err
		}
	}

	authored, err := p.store.Reviews().ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list reviews by %s: %w", userID, err)
	}
	if _, err := p.store.Reviews().DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete reviews by %s: %w", userID, err)
	}
	touched := make(map[string]struct{}, len(authored))
	for _, r := range authored {
		touched[r.ListingID] = struct{}{}
	}
	for listingID := range touched {
		if err := p.recomputeRating(ctx, listingID); err != nil {
			return err
		}
	}

	if _, err := p.store.Forum().DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete posts by %s: %w", userID, err)
	}
	err = p.store.Verifications().DeleteByLandlord(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete verification of %s: %w", userID, err)
	}

	p.logger.Info().
		Str("user_id", userID).
		Int("listings", len(owned)).
		Int("reviews", len(authored)).
		Msg("user cascade complete")
	return nil
}

func (p *Processor) handleReconcile(ctx context.Context) error {
	listings, err := p.store.Listings().List(ctx, repository.ListingFilter{})
	if err != nil {
		return fmt.Errorf("list listings: %w", err)
	}
	var failed int
	for _, l := range listings {
		if err := p.recomputeRating(ctx, l.ID); err != nil {
			failed++
			p.logger.Warn().Err(err).Str("listing_id", l.ID).Msg("reconcile listing failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("reconcile: %d of %d listings failed", failed, len(listings))
	}
	p.logger.Info().Int("listings", len(listings)).Msg("ratings reconciled")
	return nil
}
