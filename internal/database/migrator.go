// Package database prepares the MongoDB collections used by the bot.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexMigration describes one index that must exist.
type IndexMigration struct {
	Collection string
	Name       string
	Keys       bson.D
	Unique     bool
}

// DefaultMigrations are the indexes the profile and search stores rely on.
var DefaultMigrations = []IndexMigration{
	{
		Collection: "users",
		Name:       "users_userId_unique",
		Keys:       bson.D{{Key: "userId", Value: 1}},
		Unique:     true,
	},
	{
		Collection: "searches",
		Name:       "searches_userId_date",
		Keys:       bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
	},
}

// Migrator creates indexes in order. Creating an index that already exists
// with the same definition is a no-op in MongoDB, so Apply is idempotent.
type Migrator struct {
	db  *mongo.Database
	log *slog.Logger
}

func NewMigrator(db *mongo.Database, log *slog.Logger) *Migrator {
	if log == nil {
		log = slog.Default()
	}

	return &Migrator{db: db, log: log}
}

func (m *Migrator) Apply(ctx context.Context, migrations []IndexMigration) error {
	if len(migrations) == 0 {
		m.log.Info("no index migrations to apply")
		return nil
	}

	for _, migration := range migrations {
		model := mongo.IndexModel{
			Keys:    migration.Keys,
			Options: options.Index().SetName(migration.Name).SetUnique(migration.Unique),
		}

		name, err := m.db.Collection(migration.Collection).Indexes().CreateOne(ctx, model)
		if err != nil {
			return fmt.Errorf("create index %s on %s: %w", migration.Name, migration.Collection, err)
		}

		m.log.Info("index ensured",
			slog.String("collection", migration.Collection),
			slog.String("index", name),
		)
	}

	return nil
}
