package seed

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:seed_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestBuildPost(t *testing.T) {
	opts := Options{DryRun: true, MaxDays: 30, PublishRatio: 1}
	f := NewFactory(nil, opts)
	author := &models.User{ID: 1}

	for i := 0; i < 20; i++ {
		p := f.BuildPost(author)
		assert.Equal(t, uint(1), p.AuthorID)
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Tags)
		assert.GreaterOrEqual(t, p.ReadingTime, 1)
		assert.Equal(t, models.PostStatePublished, p.State)
		assert.Less(t, time.Since(p.CreatedAt), (time.Duration(opts.MaxDays)+1)*24*time.Hour)
	}
}

func TestDryRunAssignsIDs(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true})
	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, DemoPassword, user.Password)

	posts := []*models.Post{f.BuildPost(user), f.BuildPost(user)}
	require.NoError(t, f.CreatePostsBatch(posts))
	assert.NotZero(t, posts[0].ID)
	assert.NotEqual(t, posts[0].ID, posts[1].ID)
}

func TestSeed(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()

	res, err := Seed(ctx, db, Options{NumUsers: 3, NumPosts: 12, SkipBcrypt: true, PublishRatio: 1})
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	assert.Equal(t, 12, res.Posts)
	assert.Equal(t, 12, res.Published)

	var users, posts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(3), users)
	assert.Equal(t, int64(12), posts)

	// Cleaning replaces the previous data set.
	_, err = Seed(ctx, db, Options{NumUsers: 1, NumPosts: 2, SkipBcrypt: true, ShouldClean: true})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(2), posts)
}
