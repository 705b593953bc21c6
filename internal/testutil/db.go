package testutil

import (
	"fmt"
	"testing"
	"time"

	"channelpost/internal/database"
	"channelpost/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite returns a migrated in-memory database private to the test.
// A single connection keeps every goroutine on the same :memory: database.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", gofakeit.UUID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// SeedPost inserts a published post owned by authorID.
func SeedPost(t testing.TB, db *gorm.DB, postID, authorID int64) *models.Submission {
	t.Helper()

	post := &models.Submission{
		ChannelMessageID: postID,
		UserID:           authorID,
		UserName:         gofakeit.Name(),
		ContentText:      gofakeit.Sentence(8),
		Timestamp:        time.Now().UTC(),
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
