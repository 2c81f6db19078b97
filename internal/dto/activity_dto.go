package dto

import (
	"time"

	"github.com/andray-nkhatel/schoolerp-api/internal/models"
)

// ActivityResponse is the API shape of an audit trail entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListRequest filters the audit trail listing.
type ActivityListRequest struct {
	ActorID    *uint  `json:"actor_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// ActivityListResponse pages through audit entries.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	TotalItems int64              `json:"total_items"`
}

// NewActivityResponse maps the model to its API shape.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}
