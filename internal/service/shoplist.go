package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/phpdave11/gofpdf"
	"gorm.io/gorm"
)

// ShopListService manages each user's shopping cart and the aggregated
// shopping report built from it.
type ShopListService struct {
	db *gorm.DB
}

func NewShopListService(db *gorm.DB) *ShopListService {
	return &ShopListService{db: db}
}

// getOrCreate returns the user's shopping list, creating it on first use.
func (s *ShopListService) getOrCreate(db *gorm.DB, userID uint) (*models.ShopList, error) {
	var list models.ShopList
	err := db.Where("user_id = ?", userID).First(&list).Error
	if err == nil {
		return &list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	list = models.ShopList{UserID: userID}
	if err := db.Omit("Recipes").Create(&list).Error; err != nil {
		if !isUniqueViolation(err) {
			return nil, err
		}
		// Created concurrently by another request.
		if err := db.Where("user_id = ?", userID).First(&list).Error; err != nil {
			return nil, err
		}
	}
	return &list, nil
}

// AddToShoppingList puts a recipe into the user's shopping cart
func (s *ShopListService) AddToShoppingList(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)
	list, err := s.getOrCreate(db, userID)
	if err != nil {
		return nil, err
	}
	recipe, err := recipeExists(db, recipeID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.ShopListRecipe{}).Where("shop_list_id = ? AND recipe_id = ?", list.ID, recipeID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("recipe is already in the shopping cart")
	}

	if err := db.Create(&models.ShopListRecipe{ShopListID: list.ID, RecipeID: recipeID}).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("recipe is already in the shopping cart")
		}
		return nil, err
	}

	metrics.RelationshipChanges.WithLabelValues("shopping_cart", "add").Inc()
	return recipe, nil
}

// RemoveFromShoppingList takes a recipe out of the user's shopping cart
func (s *ShopListService) RemoveFromShoppingList(ctx context.Context, userID, recipeID uint) error {
	db := s.db.WithContext(ctx)
	if _, err := recipeExists(db, recipeID); err != nil {
		return err
	}
	list, err := s.getOrCreate(db, userID)
	if err != nil {
		return err
	}

	result := db.Where("shop_list_id = ? AND recipe_id = ?", list.ID, recipeID).Delete(&models.ShopListRecipe{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invalid("recipe is not in the shopping cart")
	}

	metrics.RelationshipChanges.WithLabelValues("shopping_cart", "remove").Inc()
	return nil
}

// ShoppingLine is one merged entry of a shopping report.
type ShoppingLine struct {
	Name   string
	Unit   string
	Amount int
}

func (l ShoppingLine) String() string {
	return fmt.Sprintf("%s %s: %d", l.Name, l.Unit, l.Amount)
}

// ShoppingReport is the aggregated content of a shopping cart.
type ShoppingReport struct {
	Lines []ShoppingLine
}

// AggregateIngredients sums amounts of lines sharing a (name, unit) key.
// The result keeps the order in which each key was first seen.
func AggregateIngredients(lines []ShoppingLine) []ShoppingLine {
	type key struct{ name, unit string }

	index := make(map[key]int, len(lines))
	merged := make([]ShoppingLine, 0, len(lines))
	for _, line := range lines {
		k := key{line.Name, line.Unit}
		if i, ok := index[k]; ok {
			merged[i].Amount += line.Amount
			continue
		}
		index[k] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// GenerateShoppingReport aggregates the ingredients of every recipe in the
// user's shopping cart.
func (s *ShopListService) GenerateShoppingReport(ctx context.Context, userID uint) (*ShoppingReport, error) {
	db := s.db.WithContext(ctx)
	list, err := s.getOrCreate(db, userID)
	if err != nil {
		return nil, err
	}

	var rows []ShoppingLine
	err = db.Table("shop_list_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, recipe_ingredients.amount AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shop_list_recipes.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shop_list_recipes.shop_list_id = ?", list.ID).
		Order("shop_list_recipes.created_at, shop_list_recipes.recipe_id, recipe_ingredients.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	report := &ShoppingReport{Lines: AggregateIngredients(rows)}
	logging.Debug().Uint("user_id", userID).Int("lines", len(report.Lines)).Msg("shopping report generated")
	return report, nil
}

// Text renders one "name unit: amount" line per entry.
func (r *ShoppingReport) Text() string {
	out := make([]string, len(r.Lines))
	for i, line := range r.Lines {
		out[i] = line.String()
	}
	return strings.Join(out, "\n")
}

// WritePDF renders the report as a single column PDF document.
func (r *ShoppingReport) WritePDF(w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Shopping list")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	for _, line := range r.Lines {
		pdf.CellFormat(0, 8, tr(line.String()), "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}
