// Package repository declares the storage contracts shared by every backend.
package repository

import (
	"context"
	"errors"

	"boma/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	// UpdateProfile rewrites username, email and password hash.
	UpdateProfile(ctx context.Context, user models.User) error
	UpdateRole(ctx context.Context, id string, role models.Role, state models.VerificationState) error
	UpdateVerificationState(ctx context.Context, id string, state models.VerificationState) error
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing models.Listing) error
	GetByID(ctx context.Context, id string) (models.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	Update(ctx context.Context, listing models.Listing) error
	UpdateRating(ctx context.Context, id string, rating models.RatingSummary) error
	Delete(ctx context.Context, id string) error
}

type ReviewRepository interface {
	// Create returns ErrDuplicate when the user already reviewed the listing.
	Create(ctx context.Context, review models.Review) error
	GetByID(ctx context.Context, id string) (models.Review, error)
	ListByListing(ctx context.Context, listingID string) ([]models.Review, error)
	ListByUser(ctx context.Context, userID string) ([]models.Review, error)
	Delete(ctx context.Context, id string) error
	DeleteByListing(ctx context.Context, listingID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type ForumRepository interface {
	Create(ctx context.Context, post models.ForumPost) error
	GetByID(ctx context.Context, id string) (models.ForumPost, error)
	ListByListing(ctx context.Context, listingID string) ([]models.ForumPost, error)
	SetResolved(ctx context.Context, id string, resolved bool) error
	Delete(ctx context.Context, id string) error
	DeleteByListing(ctx context.Context, listingID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type VerificationRepository interface {
	// Create returns ErrDuplicate when the landlord already has a request.
	Create(ctx context.Context, req models.VerificationRequest) error
	GetByLandlord(ctx context.Context, landlordID string) (models.VerificationRequest, error)
	List(ctx context.Context, status models.VerificationStatus) ([]models.VerificationRequest, error)
	Update(ctx context.Context, req models.VerificationRequest) error
	DeleteByLandlord(ctx context.Context, landlordID string) error
}

// Store bundles the repositories of one backend.
type Store interface {
	Users() UserRepository
	Listings() ListingRepository
	Reviews() ReviewRepository
	Forum() ForumRepository
	Verifications() VerificationRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type UserFilter struct {
	Role  models.Role
	Limit int
}
