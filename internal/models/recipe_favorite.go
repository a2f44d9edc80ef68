package models

import (
	"time"
)

type Favorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"user_id"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_favorite_pair" json:"recipe_id"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// ShopList is the per-user shopping cart. Exactly one row exists per user.
type ShopList struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`

	User    User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipes []Recipe `gorm:"many2many:shop_list_recipes;" json:"-"`
}

func (ShopList) TableName() string {
	return "shop_lists"
}

// ShopListRecipe is the join row between a shopping list and a recipe.
// The composite primary key rejects duplicate membership at the storage level.
type ShopListRecipe struct {
	ShopListID uint      `gorm:"primaryKey;autoIncrement:false"`
	RecipeID   uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time
}

func (ShopListRecipe) TableName() string {
	return "shop_list_recipes"
}

type ShortLink struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RecipeID  uint      `gorm:"not null;uniqueIndex" json:"recipe_id"`
	Hash      string    `gorm:"size:32;not null;uniqueIndex" json:"hash"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ShortLink) TableName() string {
	return "short_links"
}

// All returns every model in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Subscription{},
		&Favorite{},
		&ShopList{},
		&ShopListRecipe{},
		&ShortLink{},
	}
}
