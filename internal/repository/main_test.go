package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"devcircle/internal/database"
	"devcircle/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory sqlite database migrated from the model
// registry. A single connection keeps concurrent tests serialized.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hash",
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		Role:      models.RoleUser,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

// createPostAt pins created_at so feed ordering is deterministic.
func createPostAt(t *testing.T, db *gorm.DB, author *models.User, title string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, BodyText: title + " body", UserID: author.ID, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}
