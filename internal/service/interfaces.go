package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
}

// IUserService defines the interface for user profile operations
type IUserService interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, page PageRequest) ([]models.User, int64, error)
	IsSubscribed(ctx context.Context, viewerID uint, authorIDs ...uint) (map[uint]bool, error)
	SetPassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error)
	DeleteAvatar(ctx context.Context, userID uint) error
}

// ISubscriptionService defines the interface for subscription operations
type ISubscriptionService interface {
	Subscribe(ctx context.Context, actorID, targetID uint, recipesLimit int) (*AuthorDigest, error)
	Unsubscribe(ctx context.Context, actorID, targetID uint) error
	ListSubscriptions(ctx context.Context, actorID uint, page PageRequest, recipesLimit int) ([]AuthorDigest, int64, error)
}

// IIngredientService defines the interface for ingredient lookups
type IIngredientService interface {
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeRequest) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, actorID, id uint, req *types.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, actorID, id uint) error
	ListRecipes(ctx context.Context, filter RecipeFilter, page PageRequest) ([]models.Recipe, int64, error)
	ViewerState(ctx context.Context, viewerID uint, recipes ...models.Recipe) (*ViewerState, error)
	FavoriteRecipe(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	UnfavoriteRecipe(ctx context.Context, userID, recipeID uint) error
}

// IShopListService defines the interface for shopping cart operations
type IShopListService interface {
	AddToShoppingList(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	RemoveFromShoppingList(ctx context.Context, userID, recipeID uint) error
	GenerateShoppingReport(ctx context.Context, userID uint) (*ShoppingReport, error)
}

// IShortLinkService defines the interface for short link operations
type IShortLinkService interface {
	GetOrCreate(ctx context.Context, recipeID uint) (string, error)
	Resolve(ctx context.Context, code string) (uint, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ IIngredientService   = (*IngredientService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IShopListService     = (*ShopListService)(nil)
	_ IShortLinkService    = (*ShortLinkService)(nil)
	_ ImageStore           = (*LocalStore)(nil)
	_ ImageStore           = (*S3Store)(nil)
	_ TokenStore           = (*RedisTokenStore)(nil)
	_ TokenStore           = (*MemoryTokenStore)(nil)
)
