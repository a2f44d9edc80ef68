package service

import (
	"context"
	"errors"
	"strings"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
	links  *ShortLinkService
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore, links *ShortLinkService) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
		links:  links,
	}
}

// RecipeFilter narrows ListRecipes. ViewerID is zero for anonymous
// requests, in which case Favorited and InShoppingCart are ignored.
type RecipeFilter struct {
	AuthorID       *uint
	ViewerID       uint
	Favorited      bool
	InShoppingCart bool
}

// ViewerState holds the per-viewer flags shown next to recipes and users.
type ViewerState struct {
	Favorited  map[uint]bool
	InCart     map[uint]bool
	Subscribed map[uint]bool
}

func emptyViewerState() *ViewerState {
	return &ViewerState{
		Favorited:  map[uint]bool{},
		InCart:     map[uint]bool{},
		Subscribed: map[uint]bool{},
	}
}

func (s *RecipeService) withDetails(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Author").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id")
		}).
		Preload("Ingredients.Ingredient")
}

// validateRecipe checks the fields the binding tags cannot express.
func (s *RecipeService) validateRecipe(ctx context.Context, req *types.RecipeRequest, requireImage bool) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalid("name must not be blank")
	}
	if strings.TrimSpace(req.Text) == "" {
		return invalid("text must not be blank")
	}
	if req.CookingTime < 1 {
		return invalid("cooking time must be at least 1")
	}
	if requireImage && req.Image == "" {
		return invalid("image is required")
	}
	if len(req.Ingredients) == 0 {
		return invalid("at least one ingredient is required")
	}

	seen := make(map[uint]struct{}, len(req.Ingredients))
	ids := make([]uint, 0, len(req.Ingredients))
	for _, line := range req.Ingredients {
		if line.Amount == nil || *line.Amount < 0 {
			return invalid("ingredient amount must be a non-negative integer")
		}
		if _, dup := seen[line.ID]; dup {
			return invalid("ingredients must not repeat")
		}
		seen[line.ID] = struct{}{}
		ids = append(ids, line.ID)
	}

	var found int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return err
	}
	if int(found) != len(ids) {
		return invalid("ingredients must reference existing ingredients")
	}
	return nil
}

func ingredientLines(recipeID uint, req *types.RecipeRequest) []models.RecipeIngredient {
	lines := make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for _, line := range req.Ingredients {
		lines = append(lines, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       *line.Amount,
		})
	}
	return lines
}

// CreateRecipe creates a recipe with its ingredient lines and short link
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*models.Recipe, error) {
	if err := s.validateRecipe(ctx, req, true); err != nil {
		return nil, err
	}

	imageURL, err := s.images.Save(ctx, RecipeImages, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(ingredientLines(recipe.ID, req)).Error; err != nil {
			return err
		}
		_, err := s.links.getOrCreate(tx, recipe.ID)
		return err
	})
	if err != nil {
		discardImage(ctx, s.images, imageURL)
		if isUniqueViolation(err) {
			return nil, invalid("ingredients must not repeat")
		}
		return nil, err
	}

	logging.Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.GetRecipe(ctx, recipe.ID)
}

// GetRecipe retrieves a recipe by ID with its author and ingredient lines
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.withDetails(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, lookupError(err, "recipe not found")
	}
	return &recipe, nil
}

func (s *RecipeService) authoredRecipe(ctx context.Context, actorID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, lookupError(err, "recipe not found")
	}
	if recipe.AuthorID != actorID {
		return nil, forbidden()
	}
	return &recipe, nil
}

// UpdateRecipe replaces a recipe's fields and ingredient lines. The image is
// kept when the request omits it.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, id uint, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe, err := s.authoredRecipe(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateRecipe(ctx, req, false); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"text":         req.Text,
		"cooking_time": req.CookingTime,
	}
	if req.Image != "" {
		imageURL, err := s.images.Save(ctx, RecipeImages, req.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = imageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(ingredientLines(recipe.ID, req)).Error
	})
	if err != nil {
		if url, ok := updates["image"].(string); ok {
			discardImage(ctx, s.images, url)
		}
		if isUniqueViolation(err) {
			return nil, invalid("ingredients must not repeat")
		}
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// DeleteRecipe deletes a recipe together with everything that references it
func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, id uint) error {
	recipe, err := s.authoredRecipe(ctx, actorID, id)
	if err != nil {
		return err
	}

	var link models.ShortLink
	if err := s.db.WithContext(ctx).Where("recipe_id = ?", recipe.ID).First(&link).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dependents := []interface{}{
			&models.Favorite{},
			&models.ShopListRecipe{},
			&models.RecipeIngredient{},
			&models.ShortLink{},
		}
		for _, model := range dependents {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return err
	}

	s.links.forget(ctx, link.Hash)
	logging.Info().Uint("recipe_id", recipe.ID).Msg("recipe deleted")
	return nil
}

// ListRecipes returns one page of recipes, newest first, and the total count
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter, page PageRequest) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.ViewerID != 0 && filter.Favorited {
		query = query.Where("recipes.id IN (?)",
			s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID))
	}
	if filter.ViewerID != 0 && filter.InShoppingCart {
		query = query.Where("recipes.id IN (?)", shopListRecipeIDs(s.db, filter.ViewerID))
	}

	query, count, err := paginate(query, page)
	if err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	if err := s.withDetails(query).Order("recipes.created_at DESC").Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// ViewerState loads the favorite, shopping cart and subscription flags of
// viewerID for the given recipes and their authors.
func (s *RecipeService) ViewerState(ctx context.Context, viewerID uint, recipes ...models.Recipe) (*ViewerState, error) {
	state := emptyViewerState()
	if viewerID == 0 || len(recipes) == 0 {
		return state, nil
	}

	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	db := s.db.WithContext(ctx)

	var favorited []uint
	if err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Pluck("recipe_id", &favorited).Error; err != nil {
		return nil, err
	}
	for _, id := range favorited {
		state.Favorited[id] = true
	}

	var inCart []uint
	if err := db.Model(&models.ShopListRecipe{}).
		Where("recipe_id IN ? AND shop_list_id IN (?)", recipeIDs,
			db.Model(&models.ShopList{}).Select("id").Where("user_id = ?", viewerID)).
		Pluck("recipe_id", &inCart).Error; err != nil {
		return nil, err
	}
	for _, id := range inCart {
		state.InCart[id] = true
	}

	subscribed, err := subscribedTo(db, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}
	state.Subscribed = subscribed
	return state, nil
}

func shopListRecipeIDs(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.ShopListRecipe{}).
		Select("shop_list_recipes.recipe_id").
		Joins("JOIN shop_lists ON shop_lists.id = shop_list_recipes.shop_list_id").
		Where("shop_lists.user_id = ?", userID)
}

// recipeExists returns NotFound when no recipe has the given id.
func recipeExists(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		return nil, lookupError(err, "recipe not found")
	}
	return &recipe, nil
}
