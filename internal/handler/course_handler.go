package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/service"
	"github.com/phSch08/EvaP/internal/utils"
)

// CourseHandler serves the lifecycle and result endpoints of a course.
type CourseHandler struct {
	lifecycle service.LifecycleService
	results   service.ResultsService
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(lifecycle service.LifecycleService, results service.ResultsService, validate *validator.Validate, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		lifecycle: lifecycle,
		results:   results,
		validate:  validate,
		logger:    logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires the course routes.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Post("/:id/transition", h.transition)
	router.Get("/:id/queries", h.queries)
	router.Get("/:id/results", h.courseResults)
	router.Get("/:id/can-vote", h.canVote)
}

func (h *CourseHandler) transition(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	var payload dto.TransitionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := activityActorFromContext(c)
	result, err := h.lifecycle.Transition(c.Context(), courseID, payload.Transition, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case errors.Is(err, service.ErrUnknownTransition):
			return utils.SendError(c, fiber.StatusBadRequest, "unknown transition")
		case errors.Is(err, service.ErrInvalidTransition):
			return utils.SendError(c, fiber.StatusConflict, "transition not allowed from current state")
		case errors.Is(err, service.ErrReviewIncomplete):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "course still has unchecked text answers")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", courseID).Msg("transition failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to apply transition")
	}

	return utils.SendSuccess(c, "transition applied", result)
}

func (h *CourseHandler) queries(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	queries, err := h.lifecycle.Queries(c.Context(), courseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", courseID).Msg("failed to compute queries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute course queries")
	}

	return utils.SendSuccess(c, "course queries retrieved", queries)
}

func (h *CourseHandler) courseResults(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	userID := userIDFromContext(c)
	results, err := h.results.CourseResults(c.Context(), userID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrResultsNotVisible):
			return utils.SendError(c, fiber.StatusForbidden, "results not visible")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", courseID).Msg("failed to load results")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load course results")
	}

	return utils.SendSuccess(c, "course results retrieved", results)
}

func (h *CourseHandler) canVote(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	userID := userIDFromContext(c)
	allowed, err := h.lifecycle.CanUserVote(c.Context(), courseID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", courseID).Msg("failed to check vote permission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to check vote permission")
	}

	return utils.SendSuccess(c, "vote permission evaluated", fiber.Map{"can_vote": allowed})
}
