package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Proton-105/lanxat-bot/internal/domain"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
)

const SearchesCollection = "searches"

// MongoSearchRepository appends search entries to the searches collection.
type MongoSearchRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ SearchRepository = (*MongoSearchRepository)(nil)

func NewMongoSearchRepository(db *mongo.Database) *MongoSearchRepository {
	return &MongoSearchRepository{
		coll: db.Collection(SearchesCollection),
		now:  time.Now,
	}
}

// Register inserts entry, stamping the current time when Date is zero.
func (r *MongoSearchRepository) Register(ctx context.Context, entry domain.SearchEntry) error {
	if entry.Date.IsZero() {
		entry.Date = r.now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return errors.NewDatabaseError(fmt.Errorf("register search for %d: %w", entry.UserID, err))
	}

	return nil
}
