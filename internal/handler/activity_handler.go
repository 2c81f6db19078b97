package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/service"
	"github.com/andray-nkhatel/schoolerp-api/internal/utils"
)

// ActivityHandler exposes the audit trail.
type ActivityHandler struct {
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(activity service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		logger:   logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	req := dto.ActivityListRequest{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Page:       page,
		PageSize:   pageSize,
	}
	if actorID, err := parseQueryInt(c, "actor_id"); err == nil && actorID > 0 {
		id := uint(actorID)
		req.ActorID = &id
	}

	result, err := h.activity.List(c.UserContext(), req)
	if err != nil {
		return respondError(c, logger, err, "failed to list activity")
	}

	return utils.SendSuccess(c, "activity retrieved", result)
}
