package types

// UserView is the public profile of a user as seen by the current actor.
type UserView struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar"`
}

// RegisteredUserView is returned once, right after registration.
type RegisteredUserView struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AvatarView struct {
	Avatar string `json:"avatar"`
}

type IngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// FullRecipeView is the complete public representation of a recipe.
type FullRecipeView struct {
	ID               uint                   `json:"id"`
	Author           UserView               `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// SummaryRecipeView is the reduced representation used by toggle actions
// and subscription previews.
type SummaryRecipeView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionView is an author profile decorated with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []SummaryRecipeView `json:"recipes"`
	RecipesCount int64               `json:"recipes_count"`
}

type ShortLinkView struct {
	ShortLink string `json:"short-link"`
}

type TokenView struct {
	AuthToken string `json:"auth_token"`
}

// Page is the pagination envelope for list endpoints.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
