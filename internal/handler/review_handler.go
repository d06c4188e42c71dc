package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/service"
	"github.com/phSch08/EvaP/internal/utils"
)

// ReviewHandler serves the staff triage endpoints for text answers.
type ReviewHandler struct {
	reviews  service.ReviewService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(reviews service.ReviewService, validate *validator.Validate, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		validate: validate,
		logger:   logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register wires the review routes.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Get("/courses/:id/textanswers", h.list)
	router.Patch("/textanswers/:id/check", h.check)
	router.Patch("/textanswers/:id/hide", h.hide)
	router.Patch("/textanswers/:id/review", h.review)
}

func (h *ReviewHandler) list(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	onlyOpen := strings.EqualFold(c.Query("only_open"), "true")
	answers, err := h.reviews.ListTextAnswers(c.Context(), courseID, onlyOpen)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", courseID).Msg("failed to list text answers")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list text answers")
	}

	return utils.SendSuccess(c, "text answers retrieved", answers)
}

func (h *ReviewHandler) check(c *fiber.Ctx) error {
	return h.mutate(c, func(answerID uint) (dto.TextAnswerResponse, error) {
		return h.reviews.CheckAnswer(c.Context(), answerID)
	}, "text answer checked")
}

func (h *ReviewHandler) hide(c *fiber.Ctx) error {
	return h.mutate(c, func(answerID uint) (dto.TextAnswerResponse, error) {
		return h.reviews.HideAnswer(c.Context(), answerID)
	}, "text answer hidden")
}

func (h *ReviewHandler) review(c *fiber.Ctx) error {
	var payload dto.ReviewAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return h.mutate(c, func(answerID uint) (dto.TextAnswerResponse, error) {
		return h.reviews.ReviewAnswer(c.Context(), answerID, payload.Reviewed)
	}, "text answer reviewed")
}

func (h *ReviewHandler) mutate(c *fiber.Ctx, apply func(uint) (dto.TextAnswerResponse, error), message string) error {
	answerID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid answer id")
	}

	answer, err := apply(answerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnswerNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "text answer not found")
		case errors.Is(err, service.ErrEmptyReviewedAnswer):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "reviewed answer empty after sanitization")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("answer_id", answerID).Msg("failed to update text answer")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update text answer")
	}

	return utils.SendSuccess(c, message, answer)
}
