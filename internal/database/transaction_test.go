package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/testutil"
)

func TestWithTransactionCommitRunsAfterCommit(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	ran := false

	err := database.WithTransaction(ctx, db, func(ctx context.Context) error {
		assert.True(t, database.InTransaction(ctx))
		database.AfterCommit(ctx, func() { ran = true })
		assert.False(t, ran)
		return database.Conn(ctx, db).Create(&models.User{Username: "alice"}).Error
	})
	require.NoError(t, err)
	assert.True(t, ran)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWithTransactionRollbackDropsCallbacks(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	ran := false
	boom := errors.New("boom")

	err := database.WithTransaction(ctx, db, func(ctx context.Context) error {
		database.AfterCommit(ctx, func() { ran = true })
		require.NoError(t, database.Conn(ctx, db).Create(&models.User{Username: "bob"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNestedTransactionUsesSavepoint(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	var innerRan, keptRan bool

	err := database.WithTransaction(ctx, db, func(ctx context.Context) error {
		require.NoError(t, database.Conn(ctx, db).Create(&models.User{Username: "outer"}).Error)

		err := database.WithTransaction(ctx, db, func(ctx context.Context) error {
			database.AfterCommit(ctx, func() { innerRan = true })
			require.NoError(t, database.Conn(ctx, db).Create(&models.User{Username: "inner"}).Error)
			return errors.New("inner failed")
		})
		assert.Error(t, err)

		return database.WithTransaction(ctx, db, func(ctx context.Context) error {
			database.AfterCommit(ctx, func() { keptRan = true })
			return database.Conn(ctx, db).Create(&models.User{Username: "kept"}).Error
		})
	})
	require.NoError(t, err)
	assert.False(t, innerRan)
	assert.True(t, keptRan)

	var names []string
	require.NoError(t, db.Model(&models.User{}).Order("username").Pluck("username", &names).Error)
	assert.Equal(t, []string{"kept", "outer"}, names)
}

func TestAfterCommitWithoutTransactionRunsImmediately(t *testing.T) {
	ran := false
	database.AfterCommit(context.Background(), func() { ran = true })
	assert.True(t, ran)
	assert.False(t, database.InTransaction(context.Background()))
}

func TestAfterRollbackRunsOnlyForRolledBackWrites(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	var undone []string

	err := database.WithTransaction(ctx, db, func(ctx context.Context) error {
		database.AfterRollback(ctx, func() { undone = append(undone, "outer") })

		_ = database.WithTransaction(ctx, db, func(ctx context.Context) error {
			database.AfterRollback(ctx, func() { undone = append(undone, "failed-savepoint") })
			return errors.New("inner failed")
		})
		assert.Equal(t, []string{"failed-savepoint"}, undone)

		return database.WithTransaction(ctx, db, func(ctx context.Context) error {
			database.AfterRollback(ctx, func() { undone = append(undone, "committed-savepoint") })
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"failed-savepoint"}, undone)

	undone = nil
	err = database.WithTransaction(ctx, db, func(ctx context.Context) error {
		_ = database.WithTransaction(ctx, db, func(ctx context.Context) error {
			database.AfterRollback(ctx, func() { undone = append(undone, "inner") })
			return nil
		})
		return errors.New("outer failed")
	})
	assert.Error(t, err)
	assert.Equal(t, []string{"inner"}, undone)
}
