package dto

import (
	"time"

	"github.com/phSch08/EvaP/internal/models"
)

// ActivityResponse serializes one audit entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a page of audit entries.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
	Total int64              `json:"total"`
}

// NewActivityListResponse converts audit entries into DTOs.
func NewActivityListResponse(entries []models.ActivityLog, total int64) ActivityListResponse {
	items := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ActivityResponse{
			ID:         entry.ID,
			ActorID:    entry.ActorID,
			ActorRole:  entry.ActorRole,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Metadata:   map[string]interface{}(entry.Metadata),
			CreatedAt:  entry.CreatedAt,
		})
	}

	return ActivityListResponse{Items: items, Total: total}
}
