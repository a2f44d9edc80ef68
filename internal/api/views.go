package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func (s Settings) userView(c *gin.Context, u *models.User, subscribed bool) types.UserView {
	return types.UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       s.absolute(c, u.Avatar),
	}
}

func registeredUserView(u *models.User) types.RegisteredUserView {
	return types.RegisteredUserView{
		Email:     u.Email,
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func ingredientView(i *models.Ingredient) types.IngredientView {
	return types.IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// fullRecipeView expects r to be loaded with its author and ingredient lines.
func (s Settings) fullRecipeView(c *gin.Context, r *models.Recipe, state *service.ViewerState) types.FullRecipeView {
	ingredients := make([]types.RecipeIngredientView, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		ingredients = append(ingredients, types.RecipeIngredientView{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	return types.FullRecipeView{
		ID:               r.ID,
		Author:           s.userView(c, &r.Author, state.Subscribed[r.AuthorID]),
		Ingredients:      ingredients,
		IsFavorited:      state.Favorited[r.ID],
		IsInShoppingCart: state.InCart[r.ID],
		Name:             r.Name,
		Image:            s.absolute(c, r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func (s Settings) summaryRecipeView(c *gin.Context, r *models.Recipe) types.SummaryRecipeView {
	return types.SummaryRecipeView{
		ID:          r.ID,
		Name:        r.Name,
		Image:       s.absolute(c, r.Image),
		CookingTime: r.CookingTime,
	}
}

// subscriptionView renders an author the actor follows, so is_subscribed
// is always true.
func (s Settings) subscriptionView(c *gin.Context, d *service.AuthorDigest) types.SubscriptionView {
	recipes := make([]types.SummaryRecipeView, 0, len(d.Recipes))
	for i := range d.Recipes {
		recipes = append(recipes, s.summaryRecipeView(c, &d.Recipes[i]))
	}
	return types.SubscriptionView{
		UserView:     s.userView(c, &d.Author, true),
		Recipes:      recipes,
		RecipesCount: d.RecipesCount,
	}
}
