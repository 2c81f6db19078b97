package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/service"
	"github.com/andray-nkhatel/schoolerp-api/internal/utils"
)

// ScoreHandler exposes exam score entry routes.
type ScoreHandler struct {
	scores service.ScoreService
	logger zerolog.Logger
}

// NewScoreHandler constructs a score handler.
func NewScoreHandler(scores service.ScoreService, logger zerolog.Logger) *ScoreHandler {
	return &ScoreHandler{
		scores: scores,
		logger: logger.With().Str("component", "score_handler").Logger(),
	}
}

// Register wires score routes.
func (h *ScoreHandler) Register(router fiber.Router) {
	router.Post("", h.upsert)
	router.Get("/student/:studentID", h.listForStudent)
}

func (h *ScoreHandler) upsert(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var payload dto.ScoreUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	score, err := h.scores.Upsert(c.UserContext(), payload, userIDFromContext(c))
	if err != nil {
		return respondError(c, logger, err, "failed to record score")
	}

	return utils.SendSuccess(c, "score recorded", score)
}

func (h *ScoreHandler) listForStudent(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	studentID, err := parseParamID(c, "studentID")
	if err != nil {
		return respondError(c, logger, err, "invalid student id")
	}

	yearID, err := parseQueryInt(c, "academic_year_id")
	if err != nil || yearID <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid academic_year_id")
	}

	term, err := parseQueryInt(c, "term")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid term")
	}

	scores, err := h.scores.ForStudent(c.UserContext(), studentID, uint(yearID), term)
	if err != nil {
		return respondError(c, logger, err, "failed to list scores")
	}

	return utils.SendSuccess(c, "scores retrieved", scores)
}
