package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"boma/internal/access"
	"boma/internal/apperr"
	"boma/internal/ids"
	"boma/internal/models"
	"boma/internal/repository"
)

var ErrNotAComplaint = apperr.Validation("not_a_complaint", "only complaints can be resolved")

type ForumService struct {
	posts    repository.ForumRepository
	listings repository.ListingRepository
	log      zerolog.Logger
}

func NewForumService(posts repository.ForumRepository, listings repository.ListingRepository, log zerolog.Logger) *ForumService {
	return &ForumService{posts: posts, listings: listings, log: log}
}

type PostInput struct {
	Content   string
	Anonymous *bool
	Complaint bool
}

func (s *ForumService) List(ctx context.Context, listingID string) ([]models.ForumPost, error) {
	if _, err := s.listing(ctx, listingID); err != nil {
		return nil, err
	}
	out, err := s.posts.ListByListing(ctx, listingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *ForumService) Create(ctx context.Context, actor *models.User, listingID string, input PostInput) (models.ForumPost, error) {
	if err := access.Check(access.Authenticated(), actor); err != nil {
		return models.ForumPost{}, err
	}
	var fe apperr.FieldErrors
	content := checkText("content", input.Content, 1, maxPostLen, &fe)
	if err := fe.Err("invalid_post", "forum post rejected"); err != nil {
		return models.ForumPost{}, err
	}
	if _, err := s.listing(ctx, listingID); err != nil {
		return models.ForumPost{}, err
	}

	anonymous := true
	if input.Anonymous != nil {
		anonymous = *input.Anonymous
	}
	post := models.ForumPost{
		ID:        ids.New(),
		ListingID: listingID,
		UserID:    actor.ID,
		Content:   content,
		Anonymous: anonymous,
		Complaint: input.Complaint,
		CreatedAt: nowUTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return models.ForumPost{}, apperr.Internal(err)
	}
	return post, nil
}

func (s *ForumService) Delete(ctx context.Context, actor *models.User, postID string) error {
	if err := access.Check(access.Authenticated(), actor); err != nil {
		return err
	}
	post, err := s.get(ctx, postID)
	if err != nil {
		return err
	}
	if err := access.Check(access.OwnerOrAdmin(post.UserID), actor); err != nil {
		return err
	}
	return storeErr(s.posts.Delete(ctx, postID), errPostNotFound)
}

// SetResolved marks a complaint resolved or reopens it. Only the owner of the
// listing the complaint is about, or an administrator, may do so.
func (s *ForumService) SetResolved(ctx context.Context, actor *models.User, postID string, resolved bool) (models.ForumPost, error) {
	if err := access.Check(access.Authenticated(), actor); err != nil {
		return models.ForumPost{}, err
	}
	post, err := s.get(ctx, postID)
	if err != nil {
		return models.ForumPost{}, err
	}

	ownerID := ""
	l, err := s.listings.GetByID(ctx, post.ListingID)
	switch {
	case err == nil:
		ownerID = l.OwnerID
	case errors.Is(err, repository.ErrNotFound):
		// Orphaned complaint; only administrators pass.
	default:
		return models.ForumPost{}, apperr.Internal(err)
	}
	if err := access.Check(access.OwnerOrAdmin(ownerID), actor); err != nil {
		return models.ForumPost{}, err
	}
	if !post.Complaint {
		return models.ForumPost{}, ErrNotAComplaint
	}

	if err := s.posts.SetResolved(ctx, postID, resolved); err != nil {
		return models.ForumPost{}, storeErr(err, errPostNotFound)
	}
	post.Resolved = resolved
	return post, nil
}

func (s *ForumService) get(ctx context.Context, postID string) (models.ForumPost, error) {
	if !ids.Valid(postID) {
		return models.ForumPost{}, errPostNotFound
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return models.ForumPost{}, storeErr(err, errPostNotFound)
	}
	return post, nil
}

func (s *ForumService) listing(ctx context.Context, listingID string) (models.Listing, error) {
	if !ids.Valid(listingID) {
		return models.Listing{}, errListingNotFound
	}
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return models.Listing{}, storeErr(err, errListingNotFound)
	}
	return l, nil
}
