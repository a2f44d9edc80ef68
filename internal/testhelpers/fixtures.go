package testhelpers

import (
	"context"
	"fmt"
	"path"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the password of every user created by CreateUser.
const TestPassword = "s3cret-pass"

// TinyPNG is a 1x1 PNG encoded as a data URI.
const TinyPNG = "data:image/png;base64," +
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// CreateUser inserts a user named username with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateIngredient inserts an ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ingredient
}

// Line is an ingredient line used by CreateRecipe.
type Line struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with the given ingredient lines directly,
// bypassing validation.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines ...Line) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "/media/recipes/images/test.png",
		Text:        "Mix everything.",
		CookingTime: 10,
	}
	if err := db.Omit("Author", "Ingredients").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	for _, line := range lines {
		ri := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: line.Ingredient.ID, Amount: line.Amount}
		if err := db.Omit("Ingredient").Create(ri).Error; err != nil {
			t.Fatalf("failed to create recipe ingredient: %v", err)
		}
	}
	return recipe
}

// ImageStore stores nothing and returns a predictable URL.
type ImageStore struct {
	Saved   []string
	Deleted []string
	Err     error
}

func (s *ImageStore) Save(_ context.Context, folder, dataURI string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.Saved = append(s.Saved, dataURI)
	return "/media/" + path.Join(folder, fmt.Sprintf("image-%d.png", len(s.Saved))), nil
}

func (s *ImageStore) Delete(_ context.Context, ref string) error {
	s.Deleted = append(s.Deleted, ref)
	return nil
}
