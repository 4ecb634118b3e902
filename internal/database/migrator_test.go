package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/Proton-105/lanxat-bot/internal/testutil"
)

func TestMigrator_Apply(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates every index", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		err := NewMigrator(mt.DB, testutil.Logger()).Apply(context.Background(), DefaultMigrations)
		require.NoError(mt, err)

		first := mt.GetStartedEvent()
		require.NotNil(mt, first)
		assert.Equal(mt, "createIndexes", first.CommandName)
		assert.Equal(mt, "users", first.Command.Lookup("createIndexes").StringValue())

		second := mt.GetStartedEvent()
		require.NotNil(mt, second)
		assert.Equal(mt, "searches", second.Command.Lookup("createIndexes").StringValue())
	})

	mt.Run("stops on failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "conflict",
		}))

		err := NewMigrator(mt.DB, testutil.Logger()).Apply(context.Background(), DefaultMigrations)
		assert.Error(mt, err)
		assert.Contains(mt, err.Error(), "users_userId_unique")
	})

	mt.Run("empty", func(mt *mtest.T) {
		assert.NoError(mt, NewMigrator(mt.DB, nil).Apply(context.Background(), nil))
	})
}
