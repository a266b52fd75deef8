package mongostore

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"boma/internal/models"
	"boma/internal/repository"
)

type listingRepo struct {
	col *mongo.Collection
}

func (r listingRepo) Create(ctx context.Context, listing models.Listing) error {
	if listing.Images == nil {
		listing.Images = []string{}
	}
	return insertOne(ctx, r.col, listing)
}

func (r listingRepo) GetByID(ctx context.Context, id string) (models.Listing, error) {
	return findOne[models.Listing](ctx, r.col, byID(id))
}

func (r listingRepo) List(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error) {
	opts := options.Find().SetSort(newestFirst)
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	return findMany[models.Listing](ctx, r.col, listingQuery(filter), opts)
}

// listingQuery translates ListingFilter; every condition is ANDed at the top level.
func listingQuery(f repository.ListingFilter) bson.D {
	q := bson.D{}

	if f.Search != "" {
		re := containsRegex(f.Search)
		q = append(q, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "address", Value: re}},
		}})
	}
	if f.Location != "" {
		q = append(q, bson.E{Key: "address", Value: containsRegex(f.Location)})
	}

	price := bson.D{}
	if f.MinPrice != nil {
		price = append(price, bson.E{Key: "$gte", Value: *f.MinPrice})
	}
	if f.MaxPrice != nil {
		price = append(price, bson.E{Key: "$lte", Value: *f.MaxPrice})
	}
	if len(price) > 0 {
		q = append(q, bson.E{Key: "price", Value: price})
	}

	if f.MinBedrooms != nil {
		q = append(q, bson.E{Key: "bedrooms", Value: bson.D{{Key: "$gte", Value: *f.MinBedrooms}}})
	}
	if f.Category != "" {
		q = append(q, bson.E{Key: "category", Value: bson.Regex{Pattern: "^" + regexp.QuoteMeta(f.Category) + "$", Options: "i"}})
	}
	if f.Verified != nil {
		q = append(q, bson.E{Key: "verified", Value: *f.Verified})
	}
	if f.OwnerID != "" {
		q = append(q, bson.E{Key: "owner_id", Value: f.OwnerID})
	}
	return q
}

func containsRegex(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func (r listingRepo) Update(ctx context.Context, listing models.Listing) error {
	images := listing.Images
	if images == nil {
		images = []string{}
	}
	return updateFields(ctx, r.col, byID(listing.ID), bson.D{
		{Key: "title", Value: listing.Title},
		{Key: "description", Value: listing.Description},
		{Key: "address", Value: listing.Address},
		{Key: "verified", Value: listing.Verified},
		{Key: "images", Value: images},
		{Key: "price", Value: listing.Price},
		{Key: "bedrooms", Value: listing.Bedrooms},
		{Key: "category", Value: listing.Category},
		{Key: "updated_at", Value: listing.UpdatedAt},
	})
}

func (r listingRepo) UpdateRating(ctx context.Context, id string, rating models.RatingSummary) error {
	return updateFields(ctx, r.col, byID(id), bson.D{{Key: "rating", Value: rating}})
}

func (r listingRepo) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.col, byID(id))
}
