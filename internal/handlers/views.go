package handlers

import (
	"time"

	"boma/internal/models"
	"boma/internal/service"
)

type authResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      models.PublicUser `json:"user"`
}

func newAuthResponse(res service.AuthResult) authResponse {
	return authResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User.Public()}
}

type listingResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Address     string               `json:"address"`
	OwnerID     string               `json:"ownerId"`
	Verified    bool                 `json:"verified"`
	Images      []string             `json:"images"`
	Price       int64                `json:"price"`
	Bedrooms    int                  `json:"bedrooms"`
	Category    string               `json:"category"`
	Rating      models.RatingSummary `json:"rating"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func newListingResponse(l models.Listing) listingResponse {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return listingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Address:     l.Address,
		OwnerID:     l.OwnerID,
		Verified:    l.Verified,
		Images:      images,
		Price:       l.Price,
		Bedrooms:    l.Bedrooms,
		Category:    l.Category,
		Rating:      l.Rating,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

type reviewResponse struct {
	ID             string    `json:"id"`
	ListingID      string    `json:"listingId"`
	UserID         string    `json:"userId,omitempty"`
	SafetyRating   int       `json:"safetyRating"`
	WaterRating    int       `json:"waterRating"`
	LandlordRating int       `json:"landlordRating"`
	Comment        string    `json:"comment"`
	Anonymous      bool      `json:"anonymous"`
	CreatedAt      time.Time `json:"createdAt"`
}

// newReviewResponse hides the author of an anonymous review from viewer
// unless viewer wrote it or is an administrator.
func newReviewResponse(r models.Review, viewer *models.User) reviewResponse {
	resp := reviewResponse{
		ID:             r.ID,
		ListingID:      r.ListingID,
		SafetyRating:   r.SafetyRating,
		WaterRating:    r.WaterRating,
		LandlordRating: r.LandlordRating,
		Comment:        r.Comment,
		Anonymous:      r.Anonymous,
		CreatedAt:      r.CreatedAt,
	}
	if service.RevealAuthor(r.Anonymous, r.UserID, viewer) {
		resp.UserID = r.UserID
	}
	return resp
}

type postResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listingId"`
	UserID    string    `json:"userId,omitempty"`
	Content   string    `json:"content"`
	Anonymous bool      `json:"anonymous"`
	Complaint bool      `json:"complaint"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"createdAt"`
}

func newPostResponse(p models.ForumPost, viewer *models.User) postResponse {
	resp := postResponse{
		ID:        p.ID,
		ListingID: p.ListingID,
		Content:   p.Content,
		Anonymous: p.Anonymous,
		Complaint: p.Complaint,
		Resolved:  p.Resolved,
		CreatedAt: p.CreatedAt,
	}
	if service.RevealAuthor(p.Anonymous, p.UserID, viewer) {
		resp.UserID = p.UserID
	}
	return resp
}

type verificationResponse struct {
	ID         string                    `json:"id"`
	LandlordID string                    `json:"landlordId"`
	ReviewerID string                    `json:"reviewerId,omitempty"`
	Status     models.VerificationStatus `json:"status"`
	Notes      string                    `json:"notes,omitempty"`
	CreatedAt  time.Time                 `json:"createdAt"`
	UpdatedAt  time.Time                 `json:"updatedAt"`
	ReviewedAt *time.Time                `json:"reviewedAt,omitempty"`
}

func newVerificationResponse(v models.VerificationRequest) verificationResponse {
	return verificationResponse{
		ID:         v.ID,
		LandlordID: v.LandlordID,
		ReviewerID: v.ReviewerID,
		Status:     v.Status,
		Notes:      v.Notes,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
		ReviewedAt: v.ReviewedAt,
	}
}

// mapSlice converts every element with fn and never returns nil, so empty
// collections encode as [].
func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
