package models

import "time"

// RatingSummary holds the review aggregates denormalized onto a listing.
type RatingSummary struct {
	Count    int     `bson:"count" json:"count"`
	Safety   float64 `bson:"safety" json:"safety"`
	Water    float64 `bson:"water" json:"water"`
	Landlord float64 `bson:"landlord" json:"landlord"`
	Overall  float64 `bson:"overall" json:"overall"`
}

type Listing struct {
	ID          string        `bson:"_id"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Address     string        `bson:"address"`
	OwnerID     string        `bson:"owner_id"`
	Verified    bool          `bson:"verified"`
	Images      []string      `bson:"images"`
	Price       int64         `bson:"price"`
	Bedrooms    int           `bson:"bedrooms"`
	Category    string        `bson:"category"`
	Rating      RatingSummary `bson:"rating"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

// Summarize computes rating averages over reviews. An empty slice yields the zero summary.
func Summarize(reviews []Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}
	var safety, water, landlord int
	for _, r := range reviews {
		safety += r.SafetyRating
		water += r.WaterRating
		landlord += r.LandlordRating
	}
	n := float64(len(reviews))
	s := RatingSummary{
		Count:    len(reviews),
		Safety:   float64(safety) / n,
		Water:    float64(water) / n,
		Landlord: float64(landlord) / n,
	}
	s.Overall = (s.Safety + s.Water + s.Landlord) / 3
	return s
}
