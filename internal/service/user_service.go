package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/repository"
)

// ErrUserNotFound indicates the user was not located.
var ErrUserNotFound = errors.New("user not found")

// ErrNoLoginKeyNeeded indicates a login key was requested for an internal
// user, who signs in through the regular authentication flow instead.
var ErrNoLoginKeyNeeded = errors.New("user does not need a login key")

// UserService manages URL-based login keys for external users.
type UserService interface {
	GenerateLoginKey(ctx context.Context, userID uint) (dto.LoginKeyResponse, error)
	RefreshLoginKey(ctx context.Context, userID uint) (dto.LoginKeyResponse, error)
}

type userService struct {
	users           repository.UserRepository
	internalDomains []string
	validityDays    int
	logger          zerolog.Logger
	now             func() time.Time
	randomKey       func() int
}

// NewUserService constructs the user service. validityDays is the configured
// login key validity window.
func NewUserService(users repository.UserRepository, internalDomains []string, validityDays int, logger zerolog.Logger) UserService {
	return &userService{
		users:           users,
		internalDomains: internalDomains,
		validityDays:    validityDays,
		logger:          logger.With().Str("component", "user_service").Logger(),
		now:             time.Now,
		randomKey:       func() int { return rand.Intn(models.MaxLoginKey) },
	}
}

// GenerateLoginKey draws a fresh, unused key for an external user and stamps
// its validity window.
func (s *userService) GenerateLoginKey(ctx context.Context, userID uint) (dto.LoginKeyResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginKeyResponse{}, ErrUserNotFound
		}
		return dto.LoginKeyResponse{}, err
	}

	if !user.IsExternal(s.internalDomains) {
		return dto.LoginKeyResponse{}, ErrNoLoginKeyNeeded
	}

	for {
		key := s.randomKey()
		exists, err := s.users.LoginKeyExists(ctx, key)
		if err != nil {
			return dto.LoginKeyResponse{}, err
		}
		if !exists {
			user.LoginKey = &key
			break
		}
	}

	return s.stampValidity(ctx, user)
}

// RefreshLoginKey extends the validity of an existing key.
func (s *userService) RefreshLoginKey(ctx context.Context, userID uint) (dto.LoginKeyResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginKeyResponse{}, ErrUserNotFound
		}
		return dto.LoginKeyResponse{}, err
	}

	if user.LoginKey == nil {
		return s.GenerateLoginKey(ctx, userID)
	}

	return s.stampValidity(ctx, user)
}

func (s *userService) stampValidity(ctx context.Context, user models.UserProfile) (dto.LoginKeyResponse, error) {
	validUntil := s.now().AddDate(0, 0, s.validityDays)
	user.LoginKeyValidUntil = &validUntil

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.LoginKeyResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Time("valid_until", validUntil).Msg("login key issued")
	return dto.LoginKeyResponse{
		UserID:     user.ID,
		LoginKey:   *user.LoginKey,
		ValidUntil: validUntil,
	}, nil
}
