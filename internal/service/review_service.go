package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"boma/internal/access"
	"boma/internal/apperr"
	"boma/internal/events"
	"boma/internal/ids"
	"boma/internal/models"
	"boma/internal/repository"
)

var ErrDuplicateReview = apperr.Conflict("duplicate_review", "you have already reviewed this listing")

type ReviewService struct {
	reviews  repository.ReviewRepository
	listings repository.ListingRepository
	events   eventSink
	log      zerolog.Logger
}

func NewReviewService(reviews repository.ReviewRepository, listings repository.ListingRepository, sink eventSink, log zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, listings: listings, events: sink, log: log}
}

type ReviewInput struct {
	SafetyRating   int
	WaterRating    int
	LandlordRating int
	Comment        string
	// Anonymous defaults to true when unset.
	Anonymous *bool
}

func (s *ReviewService) Create(ctx context.Context, actor *models.User, listingID string, input ReviewInput) (models.Review, error) {
	if err := access.Check(access.Authenticated(), actor); err != nil {
		return models.Review{}, err
	}

	var fe apperr.FieldErrors
	checkRating("safetyRating", input.SafetyRating, &fe)
	checkRating("waterRating", input.WaterRating, &fe)
	checkRating("landlordRating", input.LandlordRating, &fe)
	comment := checkText("comment", input.Comment, 0, maxCommentLen, &fe)
	if err := fe.Err("invalid_review", "review rejected"); err != nil {
		return models.Review{}, err
	}

	if err := s.requireListing(ctx, listingID); err != nil {
		return models.Review{}, err
	}

	anonymous := true
	if input.Anonymous != nil {
		anonymous = *input.Anonymous
	}
	review := models.Review{
		ID:             ids.New(),
		ListingID:      listingID,
		UserID:         actor.ID,
		SafetyRating:   input.SafetyRating,
		WaterRating:    input.WaterRating,
		LandlordRating: input.LandlordRating,
		Comment:        comment,
		Anonymous:      anonymous,
		CreatedAt:      nowUTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Review{}, ErrDuplicateReview
		}
		return models.Review{}, apperr.Internal(err)
	}

	s.events.publish(ctx, events.Event{Type: events.ReviewCreated, ListingID: listingID, UserID: actor.ID})
	return review, nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (models.Review, error) {
	if !ids.Valid(id) {
		return models.Review{}, errReviewNotFound
	}
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return models.Review{}, storeErr(err, errReviewNotFound)
	}
	return r, nil
}

func (s *ReviewService) ListByListing(ctx context.Context, listingID string) ([]models.Review, error) {
	if err := s.requireListing(ctx, listingID); err != nil {
		return nil, err
	}
	out, err := s.reviews.ListByListing(ctx, listingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	out, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// Delete removes a review for its author or an administrator.
func (s *ReviewService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := access.Check(access.Authenticated(), actor); err != nil {
		return err
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Check(access.OwnerOrAdmin(r.UserID), actor); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return storeErr(err, errReviewNotFound)
	}

	s.events.publish(ctx, events.Event{Type: events.ReviewDeleted, ListingID: r.ListingID, UserID: r.UserID})
	return nil
}

// RevealAuthor reports whether viewer may see who wrote an anonymous review or
// post. Authors and administrators always can.
func RevealAuthor(anonymous bool, authorID string, viewer *models.User) bool {
	if !anonymous {
		return true
	}
	return viewer != nil && (viewer.IsAdmin() || viewer.ID == authorID)
}

func (s *ReviewService) requireListing(ctx context.Context, listingID string) error {
	if !ids.Valid(listingID) {
		return errListingNotFound
	}
	_, err := s.listings.GetByID(ctx, listingID)
	return storeErr(err, errListingNotFound)
}
