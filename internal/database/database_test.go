package database

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := New(&config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, ""))
	return db
}

func TestNewSQLite(t *testing.T) {
	db := openSQLite(t)
	assert.NoError(t, HealthCheck(context.Background(), db))

	user := models.User{
		Email:        "test@example.com",
		Username:     "tester",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, db.Create(&user).Error)
	assert.NotZero(t, user.ID)
}

func TestUniqueConstraintsAreTranslated(t *testing.T) {
	db := openSQLite(t)

	a := models.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "A", PasswordHash: "x"}
	b := models.User{Email: "b@example.com", Username: "b", FirstName: "B", LastName: "B", PasswordHash: "x"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	require.NoError(t, db.Create(&models.Subscription{UserID: a.ID, AuthorID: b.ID}).Error)
	err := db.Create(&models.Subscription{UserID: a.ID, AuthorID: b.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCookingTimeCheckConstraint(t *testing.T) {
	db := openSQLite(t)

	author := models.User{Email: "c@example.com", Username: "c", FirstName: "C", LastName: "C", PasswordHash: "x"}
	require.NoError(t, db.Create(&author).Error)

	err := db.Create(&models.Recipe{AuthorID: author.ID, Name: "Soup", Image: "x", Text: "t", CookingTime: 0}).Error
	assert.Error(t, err)
}
