package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// FavoriteRecipe adds a recipe to the user's favorites
func (s *RecipeService) FavoriteRecipe(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)
	recipe, err := recipeExists(db, recipeID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("recipe is already in favorites")
	}

	// The unique index on (user_id, recipe_id) catches a concurrent duplicate.
	if err := db.Create(&models.Favorite{UserID: userID, RecipeID: recipeID}).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("recipe is already in favorites")
		}
		return nil, err
	}

	metrics.RelationshipChanges.WithLabelValues("favorite", "add").Inc()
	return recipe, nil
}

// UnfavoriteRecipe removes a recipe from the user's favorites
func (s *RecipeService) UnfavoriteRecipe(ctx context.Context, userID, recipeID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := recipeExists(db, recipeID); err != nil {
		return err
	}

	result := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invalid("recipe is not in favorites")
	}

	metrics.RelationshipChanges.WithLabelValues("favorite", "remove").Inc()
	return nil
}
