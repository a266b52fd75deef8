package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"boma/internal/models"
	"boma/internal/repository"
)

type userRepo struct {
	col *mongo.Collection
}

func (r userRepo) Create(ctx context.Context, user models.User) error {
	return insertOne(ctx, r.col, user)
}

func (r userRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return findOne[models.User](ctx, r.col, byID(id))
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return findOne[models.User](ctx, r.col, bson.D{{Key: "email", Value: email}})
}

func (r userRepo) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return findOne[models.User](ctx, r.col, bson.D{{Key: "username", Value: username}})
}

func (r userRepo) UpdateProfile(ctx context.Context, user models.User) error {
	return updateFields(ctx, r.col, byID(user.ID), bson.D{
		{Key: "username", Value: user.Username},
		{Key: "email", Value: user.Email},
		{Key: "password_hash", Value: user.PasswordHash},
		{Key: "updated_at", Value: user.UpdatedAt},
	})
}

func (r userRepo) UpdateRole(ctx context.Context, id string, role models.Role, state models.VerificationState) error {
	return updateFields(ctx, r.col, byID(id), bson.D{
		{Key: "role", Value: role},
		{Key: "verification_state", Value: state},
	})
}

func (r userRepo) UpdateVerificationState(ctx context.Context, id string, state models.VerificationState) error {
	return updateFields(ctx, r.col, byID(id), bson.D{
		{Key: "verification_state", Value: state},
	})
}

func (r userRepo) List(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	q := bson.D{}
	if filter.Role != "" {
		q = append(q, bson.E{Key: "role", Value: filter.Role})
	}
	opts := options.Find().SetSort(newestFirst)
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findMany[models.User](ctx, r.col, q, opts)
}

func (r userRepo) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.col, byID(id))
}
