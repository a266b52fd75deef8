package mongostore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"boma/internal/repository"
	"boma/internal/repository/storetest"
)

// testStore connects to BOMA_TEST_MONGO_URI and gives each test a fresh database.
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("BOMA_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BOMA_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := NewStore(ctx, uri, "boma_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := s.db.Drop(ctx); err != nil {
		t.Fatalf("drop test database: %v", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		t.Fatalf("create indexes: %v", err)
	}

	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store { return testStore(t) })
}

func TestListingQueryEmptyFilter(t *testing.T) {
	assert.Empty(t, listingQuery(repository.ListingFilter{}))
}

func TestListingQueryEscapesSearch(t *testing.T) {
	q := listingQuery(repository.ListingFilter{Location: "a.b*"})
	if assert.Len(t, q, 1) {
		assert.Equal(t, "address", q[0].Key)
		re, ok := q[0].Value.(bson.Regex)
		if assert.True(t, ok) {
			assert.Equal(t, `a\.b\*`, re.Pattern)
			assert.Equal(t, "i", re.Options)
		}
	}
}

func TestListingQueryPriceRangeSharesField(t *testing.T) {
	lo, hi := int64(100), int64(900)
	q := listingQuery(repository.ListingFilter{MinPrice: &lo, MaxPrice: &hi})
	if assert.Len(t, q, 1) {
		assert.Equal(t, "price", q[0].Key)
		assert.Equal(t, bson.D{{Key: "$gte", Value: lo}, {Key: "$lte", Value: hi}}, q[0].Value)
	}
}
