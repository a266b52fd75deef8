package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"boma/internal/access"
	"boma/internal/apperr"
	"boma/internal/config"
	"boma/internal/events"
	"boma/internal/ids"
	"boma/internal/models"
	"boma/internal/repository"
)

var (
	ErrVerifiedFlagAdminOnly = apperr.Validation("verified_flag_admin_only", "only administrators may change the verified flag")
	ErrVerifiedOwnerRequired = apperr.Forbidden("verified_landlord_required", "only verified landlords may publish listings")
)

type ListingService struct {
	listings repository.ListingRepository
	events   eventSink
	cfg      config.ListingsConfig
	log      zerolog.Logger
}

func NewListingService(listings repository.ListingRepository, sink eventSink, cfg config.ListingsConfig, log zerolog.Logger) *ListingService {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	return &ListingService{listings: listings, events: sink, cfg: cfg, log: log}
}

type ListingInput struct {
	Title       string
	Description string
	Address     string
	Price       int64
	Bedrooms    int
	Category    string
	Images      []string
}

// ListingPatch changes only the fields that are set.
type ListingPatch struct {
	Title       *string
	Description *string
	Address     *string
	Price       *int64
	Bedrooms    *int
	Category    *string
	Images      *[]string
	Verified    *bool
}

type Page struct {
	Page    int
	PerPage int
}

type ListingPage struct {
	Items   []models.Listing
	Page    int
	PerPage int
}

// List returns one page of listings matching filter, newest first.
func (s *ListingService) List(ctx context.Context, filter repository.ListingFilter, page Page) (ListingPage, error) {
	var fe apperr.FieldErrors
	if filter.MinPrice != nil && *filter.MinPrice < 0 {
		fe.Add("minPrice", "must not be negative")
	}
	if filter.MaxPrice != nil && *filter.MaxPrice < 0 {
		fe.Add("maxPrice", "must not be negative")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		fe.Add("minPrice", "must not exceed maxPrice")
	}
	if filter.MinBedrooms != nil && *filter.MinBedrooms < 0 {
		fe.Add("bedrooms", "must not be negative")
	}
	if err := fe.Err("invalid_filter", "listing filter rejected"); err != nil {
		return ListingPage{}, err
	}

	if page.Page < 1 {
		page.Page = 1
	}
	switch {
	case page.PerPage <= 0:
		page.PerPage = s.cfg.DefaultPageSize
	case page.PerPage > s.cfg.MaxPageSize:
		page.PerPage = s.cfg.MaxPageSize
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Location = strings.TrimSpace(filter.Location)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Limit = page.PerPage
	filter.Offset = (page.Page - 1) * page.PerPage

	items, err := s.listings.List(ctx, filter)
	if err != nil {
		return ListingPage{}, apperr.Internal(err)
	}
	return ListingPage{Items: items, Page: page.Page, PerPage: page.PerPage}, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (models.Listing, error) {
	if !ids.Valid(id) {
		return models.Listing{}, errListingNotFound
	}
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return models.Listing{}, storeErr(err, errListingNotFound)
	}
	return l, nil
}

func (s *ListingService) Create(ctx context.Context, actor *models.User, input ListingInput) (models.Listing, error) {
	if err := access.Check(access.Authenticated(), actor); err != nil {
		return models.Listing{}, err
	}
	if s.cfg.RequireVerifiedOwner && !actor.IsAdmin() &&
		(actor.Role != models.RoleLandlord || actor.VerificationState != models.VerificationVerified) {
		return models.Listing{}, ErrVerifiedOwnerRequired
	}

	var fe apperr.FieldErrors
	now := nowUTC()
	l := models.Listing{
		ID:          ids.New(),
		Title:       checkText("title", input.Title, 1, maxTitleLen, &fe),
		Description: checkText("description", input.Description, 0, maxDescriptionLen, &fe),
		Address:     checkText("address", input.Address, 1, maxAddressLen, &fe),
		OwnerID:     actor.ID,
		Verified:    false,
		Images:      checkImages(input.Images, &fe),
		Price:       input.Price,
		Bedrooms:    input.Bedrooms,
		Category:    strings.ToLower(checkText("category", input.Category, 0, maxCategoryLen, &fe)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	checkPriceAndBedrooms(l.Price, l.Bedrooms, &fe)
	if err := fe.Err("invalid_listing", "listing rejected"); err != nil {
		return models.Listing{}, err
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return models.Listing{}, apperr.Internal(err)
	}
	s.log.Info().Str("listing_id", l.ID).Str("owner_id", l.OwnerID).Msg("listing created")
	return l, nil
}

// Update applies patch for the listing owner or an administrator. Only
// administrators may set Verified.
func (s *ListingService) Update(ctx context.Context, actor *models.User, id string, patch ListingPatch) (models.Listing, error) {
	if err := access.Check(access.Authenticated(), actor); err != nil {
		return models.Listing{}, err
	}
	l, err := s.Get(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}
	if err := access.Check(access.OwnerOrAdmin(l.OwnerID), actor); err != nil {
		return models.Listing{}, err
	}
	if patch.Verified != nil && !actor.IsAdmin() {
		return models.Listing{}, ErrVerifiedFlagAdminOnly
	}

	var fe apperr.FieldErrors
	if patch.Title != nil {
		l.Title = checkText("title", *patch.Title, 1, maxTitleLen, &fe)
	}
	if patch.Description != nil {
		l.Description = checkText("description", *patch.Description, 0, maxDescriptionLen, &fe)
	}
	if patch.Address != nil {
		l.Address = checkText("address", *patch.Address, 1, maxAddressLen, &fe)
	}
	if patch.Price != nil {
		l.Price = *patch.Price
	}
	if patch.Bedrooms != nil {
		l.Bedrooms = *patch.Bedrooms
	}
	if patch.Category != nil {
		l.Category = strings.ToLower(checkText("category", *patch.Category, 0, maxCategoryLen, &fe))
	}
	if patch.Images != nil {
		l.Images = checkImages(*patch.Images, &fe)
	}
	if patch.Verified != nil {
		l.Verified = *patch.Verified
	}
	checkPriceAndBedrooms(l.Price, l.Bedrooms, &fe)
	if err := fe.Err("invalid_listing", "listing rejected"); err != nil {
		return models.Listing{}, err
	}

	l.UpdatedAt = nowUTC()
	if err := s.listings.Update(ctx, l); err != nil {
		return models.Listing{}, storeErr(err, errListingNotFound)
	}
	return s.Get(ctx, id)
}

// Delete removes the listing; its reviews and forum posts are removed by the
// listing.deleted handler.
func (s *ListingService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := access.Check(access.Authenticated(), actor); err != nil {
		return err
	}
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Check(access.OwnerOrAdmin(l.OwnerID), actor); err != nil {
		return err
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return storeErr(err, errListingNotFound)
	}

	s.log.Info().Str("listing_id", id).Str("actor_id", actor.ID).Msg("listing deleted")
	s.events.publish(ctx, events.Event{Type: events.ListingDeleted, ListingID: id, UserID: l.OwnerID})
	return nil
}

func checkPriceAndBedrooms(price int64, bedrooms int, fe *apperr.FieldErrors) {
	if price < 0 {
		fe.Add("price", "must not be negative")
	}
	if bedrooms < 0 || bedrooms > maxBedrooms {
		fe.Add("bedrooms", "must be between 0 and 50")
	}
}
