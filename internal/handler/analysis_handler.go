package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/service"
	"github.com/andray-nkhatel/schoolerp-api/internal/utils"
)

// AnalysisHandler exposes class ranking and subject statistics.
type AnalysisHandler struct {
	analysis service.AnalysisService
	logger   zerolog.Logger
}

// NewAnalysisHandler constructs an analysis handler.
func NewAnalysisHandler(analysis service.AnalysisService, logger zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		logger:   logger.With().Str("component", "analysis_handler").Logger(),
	}
}

// Register wires analysis routes.
func (h *AnalysisHandler) Register(router fiber.Router) {
	router.Get("/class/:gradeID", h.analyzeClass)
}

func (h *AnalysisHandler) analyzeClass(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	gradeID, err := parseParamID(c, "gradeID")
	if err != nil {
		return respondError(c, logger, err, "invalid grade id")
	}

	yearID, err := parseQueryInt(c, "academic_year_id")
	if err != nil || yearID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid academic_year_id")
	}

	term, err := parseQueryInt(c, "term")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid term")
	}

	result, err := h.analysis.AnalyzeClass(c.UserContext(), dto.ClassAnalysisRequest{
		GradeID:        gradeID,
		AcademicYearID: uint(yearID),
		Term:           term,
	})
	if err != nil {
		return respondError(c, logger, err, "failed to analyze class")
	}

	return utils.SendSuccess(c, "class analysis computed", result)
}
