package repository

import (
	"strings"

	"boma/internal/models"
)

// ListingFilter narrows a listing query. Every set field must match.
// Nil pointers and empty strings leave that dimension unconstrained.
type ListingFilter struct {
	Search      string
	Location    string
	MinPrice    *int64
	MaxPrice    *int64
	MinBedrooms *int
	Category    string
	Verified    *bool
	OwnerID     string

	// Limit 0 means no limit.
	Limit  int
	Offset int
}

// Matches is the reference semantics for ListingFilter; backends translate it to
// their own query language and must agree with it.
func (f ListingFilter) Matches(l models.Listing) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !containsFold(l.Title, q) && !containsFold(l.Description, q) && !containsFold(l.Address, q) {
			return false
		}
	}
	if f.Location != "" && !containsFold(l.Address, strings.ToLower(f.Location)) {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.MinBedrooms != nil && l.Bedrooms < *f.MinBedrooms {
		return false
	}
	if f.Category != "" && !strings.EqualFold(l.Category, f.Category) {
		return false
	}
	if f.Verified != nil && l.Verified != *f.Verified {
		return false
	}
	if f.OwnerID != "" && l.OwnerID != f.OwnerID {
		return false
	}
	return true
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

// NewerFirst orders listings by creation time, newest first, breaking ties by id.
func NewerFirst(a, b models.Listing) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}
