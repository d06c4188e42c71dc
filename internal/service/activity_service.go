package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/repository"
)

// ActivityActor represents the authenticated actor performing an action.
type ActivityActor struct {
	ID   uint
	Role string
}

// ActivityService exposes the audit trail of lifecycle actions.
type ActivityService interface {
	Record(ctx context.Context, actor ActivityActor, action, entityType string, entityID *uint, metadata map[string]interface{}) error
	List(ctx context.Context, filter repository.ActivityLogFilter) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, actor ActivityActor, action, entityType string, entityID *uint, metadata map[string]interface{}) error {
	if strings.TrimSpace(action) == "" {
		return fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entityType) == "" {
		return fmt.Errorf("entity type is required")
	}

	entry := models.ActivityLog{
		ActorID:    actor.ID,
		ActorRole:  strings.ToLower(strings.TrimSpace(actor.Role)),
		Action:     strings.ToLower(strings.TrimSpace(action)),
		EntityType: strings.ToLower(strings.TrimSpace(entityType)),
		EntityID:   entityID,
		Metadata:   datatypes.JSONMap(metadata),
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity log")
		return err
	}

	return nil
}

func (s *activityService) List(ctx context.Context, filter repository.ActivityLogFilter) (dto.ActivityListResponse, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	return dto.NewActivityListResponse(entries, total), nil
}
