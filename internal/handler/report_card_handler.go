package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/service"
	"github.com/andray-nkhatel/schoolerp-api/internal/utils"
)

// ReportCardHandler exposes report card generation and comment routes.
type ReportCardHandler struct {
	cards  service.ReportCardService
	batch  service.BatchService
	logger zerolog.Logger
}

// NewReportCardHandler constructs a report card handler.
func NewReportCardHandler(cards service.ReportCardService, batch service.BatchService, logger zerolog.Logger) *ReportCardHandler {
	return &ReportCardHandler{
		cards:  cards,
		batch:  batch,
		logger: logger.With().Str("component", "report_card_handler").Logger(),
	}
}

// Register wires report card routes. The bulk reset is an administrative
// operation; adminGate guards it route-scoped while the rest of the group
// stays open to teachers.
func (h *ReportCardHandler) Register(router fiber.Router, adminGate fiber.Handler) {
	if adminGate == nil {
		adminGate = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Post("", h.ensure)
	router.Post("/batch", h.generateBatch)
	router.Get("/student/:studentID", h.listForStudent)
	router.Get("/:id/document", h.document)
	router.Get("/:id/comment", h.comment)
	router.Put("/:id/comment", h.updateComment)
	router.Get("/:id/comment/editable", h.canEditComment)
	router.Delete("", adminGate, h.deleteAll)
}

func (h *ReportCardHandler) ensure(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var payload dto.EnsureReportCardRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	card, err := h.cards.Ensure(c.UserContext(), payload, userIDFromContext(c))
	if err != nil {
		return respondError(c, logger, err, "failed to generate report card")
	}

	return utils.SendSuccess(c, "report card ready", card)
}

func (h *ReportCardHandler) generateBatch(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var payload dto.BatchGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.batch.GenerateForGrade(c.UserContext(), payload, userIDFromContext(c))
	if err != nil {
		return respondError(c, logger, err, "failed to generate report cards for grade")
	}

	return utils.SendSuccess(c, "batch generation completed", result)
}

func (h *ReportCardHandler) listForStudent(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	studentID, err := parseParamID(c, "studentID")
	if err != nil {
		return respondError(c, logger, err, "invalid student id")
	}

	cards, err := h.cards.ListForStudent(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, logger, err, "failed to list report cards")
	}

	return utils.SendSuccess(c, "report cards retrieved", cards)
}

func (h *ReportCardHandler) document(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, logger, err, "invalid report card id")
	}

	document, err := h.cards.Document(c.UserContext(), id)
	if err != nil {
		return respondError(c, logger, err, "failed to generate document")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(document)
}

func (h *ReportCardHandler) comment(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, logger, err, "invalid report card id")
	}

	comment, err := h.cards.Comment(c.UserContext(), id)
	if err != nil {
		return respondError(c, logger, err, "failed to read comment")
	}

	return utils.SendSuccess(c, "comment retrieved", fiber.Map{"text": comment})
}

func (h *ReportCardHandler) updateComment(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, logger, err, "invalid report card id")
	}

	var payload dto.CommentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.cards.UpdateComment(c.UserContext(), id, payload.Text, userIDFromContext(c)); err != nil {
		return respondError(c, logger, err, "failed to update comment")
	}

	return utils.SendSuccess(c, "comment updated", nil)
}

func (h *ReportCardHandler) canEditComment(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, logger, err, "invalid report card id")
	}

	allowed, err := h.cards.CanEditComment(c.UserContext(), id, userIDFromContext(c))
	if err != nil {
		return respondError(c, logger, err, "failed to check comment permission")
	}

	return utils.SendSuccess(c, "permission evaluated", fiber.Map{"editable": allowed})
}

func (h *ReportCardHandler) deleteAll(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	if err := h.cards.DeleteAll(c.UserContext(), activityActorFromContext(c)); err != nil {
		return respondError(c, logger, err, "failed to delete report cards")
	}

	return utils.SendSuccess(c, "report cards deleted", nil)
}
