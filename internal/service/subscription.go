package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// SubscriptionService manages who follows which author.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// AllRecipes asks for the whole recipe preview instead of a capped one.
const AllRecipes = -1

// AuthorDigest is an author with a preview of their recipes. RecipesLimit
// caps Recipes; RecipesCount is always the full total.
type AuthorDigest struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// Subscribe makes actorID follow targetID. A negative recipesLimit (AllRecipes)
// returns every recipe; zero returns none.
func (s *SubscriptionService) Subscribe(ctx context.Context, actorID, targetID uint, recipesLimit int) (*AuthorDigest, error) {
	db := s.db.WithContext(ctx)

	var target models.User
	if err := db.First(&target, targetID).Error; err != nil {
		return nil, lookupError(err, "user not found")
	}

	var count int64
	if err := db.Model(&models.Subscription{}).Where("user_id = ? AND author_id = ?", actorID, targetID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("you are already subscribed to this user")
	}
	if actorID == targetID {
		return nil, invalid("you cannot subscribe to yourself")
	}

	if err := db.Create(&models.Subscription{UserID: actorID, AuthorID: targetID}).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("you are already subscribed to this user")
		}
		return nil, err
	}
	metrics.RelationshipChanges.WithLabelValues("subscription", "add").Inc()

	digests, err := s.digest(db, []models.User{target}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &digests[0], nil
}

// Unsubscribe removes the actorID -> targetID subscription.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, actorID, targetID uint) error {
	db := s.db.WithContext(ctx)

	var target models.User
	if err := db.First(&target, targetID).Error; err != nil {
		return lookupError(err, "user not found")
	}

	result := db.Where("user_id = ? AND author_id = ?", actorID, targetID).Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invalid("you are not subscribed to this user")
	}

	metrics.RelationshipChanges.WithLabelValues("subscription", "remove").Inc()
	return nil
}

// ListSubscriptions returns one page of the authors actorID follows.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, actorID uint, page PageRequest, recipesLimit int) ([]AuthorDigest, int64, error) {
	db := s.db.WithContext(ctx)

	query := db.Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", actorID)

	query, count, err := paginate(query, page)
	if err != nil {
		return nil, 0, err
	}

	var authors []models.User
	if err := query.Order("subscriptions.created_at DESC").Order("subscriptions.id DESC").Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	digests, err := s.digest(db, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return digests, count, nil
}

func (s *SubscriptionService) digest(db *gorm.DB, authors []models.User, recipesLimit int) ([]AuthorDigest, error) {
	digests := make([]AuthorDigest, 0, len(authors))
	for _, author := range authors {
		d := AuthorDigest{Author: author}

		if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&d.RecipesCount).Error; err != nil {
			return nil, err
		}

		query := db.Where("author_id = ?", author.ID).Order("created_at DESC").Order("id DESC")
		switch {
		case recipesLimit == 0:
			d.Recipes = []models.Recipe{}
			digests = append(digests, d)
			continue
		case recipesLimit > 0:
			query = query.Limit(recipesLimit)
		}
		if err := query.Find(&d.Recipes).Error; err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, nil
}

// subscribedTo reports which of authorIDs viewerID follows.
func subscribedTo(db *gorm.DB, viewerID uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if viewerID == 0 || len(authorIDs) == 0 {
		return out, nil
	}

	var ids []uint
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
