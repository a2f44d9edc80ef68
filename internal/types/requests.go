package types

// RegisterRequest represents the request body for user registration
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest represents the request body for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required,dataurl_image"`
}

// IngredientAmount is one ingredient line of a recipe submission.
type IngredientAmount struct {
	ID     uint `json:"id" binding:"required"`
	Amount *int `json:"amount" binding:"required,gte=0"`
}

// RecipeRequest is the payload for both creating and updating a recipe.
// On update the image may be omitted to keep the current one.
type RecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" binding:"required,dive"`
	Image       string             `json:"image" binding:"omitempty,dataurl_image"`
	Name        string             `json:"name" binding:"required,max=256"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time"`
}
