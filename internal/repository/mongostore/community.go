package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"boma/internal/models"
)

type reviewRepo struct {
	col *mongo.Collection
}

func (r reviewRepo) Create(ctx context.Context, review models.Review) error {
	return insertOne(ctx, r.col, review)
}

func (r reviewRepo) GetByID(ctx context.Context, id string) (models.Review, error) {
	return findOne[models.Review](ctx, r.col, byID(id))
}

func (r reviewRepo) ListByListing(ctx context.Context, listingID string) ([]models.Review, error) {
	return findMany[models.Review](ctx, r.col, bson.D{{Key: "listing_id", Value: listingID}}, options.Find().SetSort(newestFirst))
}

func (r reviewRepo) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return findMany[models.Review](ctx, r.col, bson.D{{Key: "user_id", Value: userID}}, options.Find().SetSort(newestFirst))
}

func (r reviewRepo) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.col, byID(id))
}

func (r reviewRepo) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	return deleteMany(ctx, r.col, bson.D{{Key: "listing_id", Value: listingID}})
}

func (r reviewRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return deleteMany(ctx, r.col, bson.D{{Key: "user_id", Value: userID}})
}

type forumRepo struct {
	col *mongo.Collection
}

func (r forumRepo) Create(ctx context.Context, post models.ForumPost) error {
	return insertOne(ctx, r.col, post)
}

func (r forumRepo) GetByID(ctx context.Context, id string) (models.ForumPost, error) {
	return findOne[models.ForumPost](ctx, r.col, byID(id))
}

func (r forumRepo) ListByListing(ctx context.Context, listingID string) ([]models.ForumPost, error) {
	return findMany[models.ForumPost](ctx, r.col, bson.D{{Key: "listing_id", Value: listingID}}, options.Find().SetSort(newestFirst))
}

func (r forumRepo) SetResolved(ctx context.Context, id string, resolved bool) error {
	return updateFields(ctx, r.col, byID(id), bson.D{{Key: "resolved", Value: resolved}})
}

func (r forumRepo) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.col, byID(id))
}

func (r forumRepo) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	return deleteMany(ctx, r.col, bson.D{{Key: "listing_id", Value: listingID}})
}

func (r forumRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return deleteMany(ctx, r.col, bson.D{{Key: "user_id", Value: userID}})
}

type verificationRepo struct {
	col *mongo.Collection
}

func (r verificationRepo) Create(ctx context.Context, req models.VerificationRequest) error {
	return insertOne(ctx, r.col, req)
}

func (r verificationRepo) GetByLandlord(ctx context.Context, landlordID string) (models.VerificationRequest, error) {
	return findOne[models.VerificationRequest](ctx, r.col, bson.D{{Key: "landlord_id", Value: landlordID}})
}

func (r verificationRepo) List(ctx context.Context, status models.VerificationStatus) ([]models.VerificationRequest, error) {
	q := bson.D{}
	if status != "" {
		q = append(q, bson.E{Key: "status", Value: status})
	}
	return findMany[models.VerificationRequest](ctx, r.col, q, options.Find().SetSort(newestFirst))
}

func (r verificationRepo) Update(ctx context.Context, req models.VerificationRequest) error {
	set := bson.D{
		{Key: "status", Value: req.Status},
		{Key: "reviewer_id", Value: req.ReviewerID},
		{Key: "notes", Value: req.Notes},
		{Key: "updated_at", Value: req.UpdatedAt},
		{Key: "reviewed_at", Value: req.ReviewedAt},
	}
	filter := bson.D{{Key: "_id", Value: req.ID}, {Key: "landlord_id", Value: req.LandlordID}}
	return updateFields(ctx, r.col, filter, set)
}

func (r verificationRepo) DeleteByLandlord(ctx context.Context, landlordID string) error {
	return deleteOne(ctx, r.col, bson.D{{Key: "landlord_id", Value: landlordID}})
}
