package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/redis/go-redis/v9"
	hashids "github.com/speps/go-hashids/v2"
	"gorm.io/gorm"
)

const (
	shortLinkCachePrefix = "shortlink:"
	shortLinkCacheTTL    = 24 * time.Hour
)

// EncodeShortLink derives the short code of a recipe id. The same id, salt
// and minimum length always give the same code.
func EncodeShortLink(id uint, salt string, minLength int) (string, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return "", err
	}
	return h.EncodeInt64([]int64{int64(id)})
}

// ShortLinkService maps recipes to persisted short codes. The redis cache
// is optional.
type ShortLinkService struct {
	db        *gorm.DB
	cache     *redis.Client
	salt      string
	minLength int
}

func NewShortLinkService(db *gorm.DB, cache *redis.Client, salt string, minLength int) *ShortLinkService {
	return &ShortLinkService{
		db:        db,
		cache:     cache,
		salt:      salt,
		minLength: minLength,
	}
}

// GetOrCreate returns the short code of a recipe, creating it on first use.
func (s *ShortLinkService) GetOrCreate(ctx context.Context, recipeID uint) (string, error) {
	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&exists).Error; err != nil {
		return "", err
	}
	if exists == 0 {
		return "", notFound("recipe not found")
	}
	return s.getOrCreate(s.db.WithContext(ctx), recipeID)
}

func (s *ShortLinkService) getOrCreate(tx *gorm.DB, recipeID uint) (string, error) {
	var link models.ShortLink
	err := tx.Where("recipe_id = ?", recipeID).First(&link).Error
	if err == nil {
		return link.Hash, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	code, err := EncodeShortLink(recipeID, s.salt, s.minLength)
	if err != nil {
		return "", fmt.Errorf("failed to encode short link: %w", err)
	}

	link = models.ShortLink{RecipeID: recipeID, Hash: code}
	if err := tx.Create(&link).Error; err != nil {
		// A concurrent request created the same row; the code is deterministic.
		if isUniqueViolation(err) {
			return code, nil
		}
		return "", err
	}

	logging.Info().Uint("recipe_id", recipeID).Str("code", code).Msg("short link created")
	return code, nil
}

// Resolve returns the recipe id behind code.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (uint, error) {
	if s.cache != nil {
		id, err := s.cache.Get(ctx, shortLinkCachePrefix+code).Uint64()
		if err == nil {
			metrics.ShortLinkResolutions.WithLabelValues("cache").Inc()
			return uint(id), nil
		}
		if !errors.Is(err, redis.Nil) {
			logging.Warn().Err(err).Msg("short link cache lookup failed")
		}
	}

	var link models.ShortLink
	if err := s.db.WithContext(ctx).Where("hash = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ShortLinkResolutions.WithLabelValues("miss").Inc()
			return 0, notFound("short link not found")
		}
		return 0, err
	}
	metrics.ShortLinkResolutions.WithLabelValues("database").Inc()

	if s.cache != nil {
		val := strconv.FormatUint(uint64(link.RecipeID), 10)
		if err := s.cache.Set(ctx, shortLinkCachePrefix+code, val, shortLinkCacheTTL).Err(); err != nil {
			logging.Warn().Err(err).Msg("short link cache write failed")
		}
	}
	return link.RecipeID, nil
}

// forget drops the cache entry of code.
func (s *ShortLinkService) forget(ctx context.Context, code string) {
	if s.cache == nil || code == "" {
		return
	}
	if err := s.cache.Del(ctx, shortLinkCachePrefix+code).Err(); err != nil {
		logging.Warn().Err(err).Msg("short link cache delete failed")
	}
}
