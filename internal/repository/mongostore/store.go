// Package mongostore implements repository.Store on MongoDB.
//
// Uniqueness rules live in ensureIndexes; inserts that collide surface as
// repository.ErrDuplicate.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"boma/internal/repository"
)

const (
	ColUsers         = "users"
	ColListings      = "listings"
	ColReviews       = "reviews"
	ColForumPosts    = "forum_posts"
	ColVerifications = "verification_requests"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ repository.Store = (*Store)(nil)

// NewStore connects, pings and creates indexes.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ensure indexes: %w", err)
	}
	return s, nil
}

func (s *Store) Users() repository.UserRepository {
	return userRepo{col: s.col(ColUsers)}
}

func (s *Store) Listings() repository.ListingRepository {
	return listingRepo{col: s.col(ColListings)}
}

func (s *Store) Reviews() repository.ReviewRepository {
	return reviewRepo{col: s.col(ColReviews)}
}

func (s *Store) Forum() repository.ForumRepository {
	return forumRepo{col: s.col(ColForumPosts)}
}

func (s *Store) Verifications() repository.VerificationRepository {
	return verificationRepo{col: s.col(ColVerifications)}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},
		{ColUsers, bson.D{{Key: "username", Value: 1}}, true},
		{ColUsers, bson.D{{Key: "role", Value: 1}}, false},

		{ColListings, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, false},
		{ColListings, bson.D{{Key: "owner_id", Value: 1}}, false},
		{ColListings, bson.D{{Key: "price", Value: 1}}, false},
		{ColListings, bson.D{{Key: "verified", Value: 1}}, false},

		// one review per (listing, user)
		{ColReviews, bson.D{{Key: "listing_id", Value: 1}, {Key: "user_id", Value: 1}}, true},
		{ColReviews, bson.D{{Key: "user_id", Value: 1}}, false},

		{ColForumPosts, bson.D{{Key: "listing_id", Value: 1}, {Key: "created_at", Value: -1}}, false},
		{ColForumPosts, bson.D{{Key: "user_id", Value: 1}}, false},

		{ColVerifications, bson.D{{Key: "landlord_id", Value: 1}}, true},
		{ColVerifications, bson.D{{Key: "status", Value: 1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}
	return nil
}
