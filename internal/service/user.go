package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles profile reads and self-service account changes.
type UserService struct {
	db     *gorm.DB
	images ImageStore
}

func NewUserService(db *gorm.DB, images ImageStore) *UserService {
	return &UserService{
		db:     db,
		images: images,
	}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "user not found")
	}
	return &user, nil
}

// ListUsers returns one page of users ordered by id
func (s *UserService) ListUsers(ctx context.Context, page PageRequest) ([]models.User, int64, error) {
	query, count, err := paginate(s.db.WithContext(ctx).Model(&models.User{}), page)
	if err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := query.Order("id").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// IsSubscribed reports which of authorIDs viewerID follows
func (s *UserService) IsSubscribed(ctx context.Context, viewerID uint, authorIDs ...uint) (map[uint]bool, error) {
	return subscribedTo(s.db.WithContext(ctx), viewerID, authorIDs)
}

// SetPassword replaces the password after checking the current one
func (s *UserService) SetPassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return invalid("current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", string(hashed)).Error; err != nil {
		return err
	}
	logging.Info().Uint("user_id", userID).Msg("password changed")
	return nil
}

// SetAvatar stores a new avatar image and returns its URL
func (s *UserService) SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.images.Save(ctx, AvatarImages, dataURI)
	if err != nil {
		return "", err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("avatar", url).Error; err != nil {
		discardImage(ctx, s.images, url)
		return "", err
	}
	return url, nil
}

// DeleteAvatar clears the user's avatar
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("avatar", "").Error
}
