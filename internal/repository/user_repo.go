package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/models"
)

// UserRepository handles persistence for user profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.UserProfile, error)
	GetByUsername(ctx context.Context, username string) (models.UserProfile, error)
	GetByLoginKey(ctx context.Context, key int) (models.UserProfile, error)
	LoginKeyExists(ctx context.Context, key int) (bool, error)
	Update(ctx context.Context, user *models.UserProfile) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.UserProfile, error) {
	var user models.UserProfile
	if err := r.db.WithContext(ctx).
		Preload("Delegates").
		Preload("CCUsers").
		First(&user, id).Error; err != nil {
		return models.UserProfile{}, err
	}

	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (models.UserProfile, error) {
	var user models.UserProfile
	if err := r.db.WithContext(ctx).
		Preload("Delegates").
		Preload("CCUsers").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return models.UserProfile{}, err
	}

	return user, nil
}

func (r *userRepository) GetByLoginKey(ctx context.Context, key int) (models.UserProfile, error) {
	var user models.UserProfile
	if err := r.db.WithContext(ctx).
		Where("login_key = ?", key).
		First(&user).Error; err != nil {
		return models.UserProfile{}, err
	}

	return user, nil
}

func (r *userRepository) LoginKeyExists(ctx context.Context, key int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("login_key = ?", key).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.UserProfile) error {
	return r.db.WithContext(ctx).Save(user).Error
}
