package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID             string    `bson:"_id"`
	ListingID      string    `bson:"listing_id"`
	UserID         string    `bson:"user_id"`
	SafetyRating   int       `bson:"safety_rating"`
	WaterRating    int       `bson:"water_rating"`
	LandlordRating int       `bson:"landlord_rating"`
	Comment        string    `bson:"comment"`
	Anonymous      bool      `bson:"anonymous"`
	CreatedAt      time.Time `bson:"created_at"`
}

type ForumPost struct {
	ID        string    `bson:"_id"`
	ListingID string    `bson:"listing_id"`
	UserID    string    `bson:"user_id"`
	Content   string    `bson:"content"`
	Anonymous bool      `bson:"anonymous"`
	Complaint bool      `bson:"complaint"`
	Resolved  bool      `bson:"resolved"`
	CreatedAt time.Time `bson:"created_at"`
}

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusVerified, VerificationStatusRejected:
		return true
	}
	return false
}

// VerificationRequest is unique per landlord; resubmission reuses the same record.
type VerificationRequest struct {
	ID         string             `bson:"_id"`
	LandlordID string             `bson:"landlord_id"`
	ReviewerID string             `bson:"reviewer_id,omitempty"`
	Status     VerificationStatus `bson:"status"`
	Notes      string             `bson:"notes"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
	ReviewedAt *time.Time         `bson:"reviewed_at,omitempty"`
}
