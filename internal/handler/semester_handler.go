package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/service"
	"github.com/phSch08/EvaP/internal/utils"
)

// SemesterHandler serves archival and overview endpoints.
type SemesterHandler struct {
	archive service.ArchiveService
	logger  zerolog.Logger
}

// NewSemesterHandler constructs the handler.
func NewSemesterHandler(archive service.ArchiveService, logger zerolog.Logger) *SemesterHandler {
	return &SemesterHandler{
		archive: archive,
		logger:  logger.With().Str("component", "semester_handler").Logger(),
	}
}

// Register wires the archival routes.
func (h *SemesterHandler) Register(router fiber.Router) {
	router.Post("/semesters/:id/archive", h.archiveSemester)
	router.Get("/semesters/:id/overview", h.overview)
	router.Post("/courses/:id/archive", h.archiveCourse)
}

func (h *SemesterHandler) archiveSemester(c *fiber.Ctx) error {
	semesterID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid semester id")
	}

	actor := activityActorFromContext(c)
	if err := h.archive.ArchiveSemester(c.Context(), semesterID, actor); err != nil {
		switch {
		case errors.Is(err, service.ErrSemesterNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "semester not found")
		case errors.Is(err, models.ErrNotArchiveable):
			return utils.SendError(c, fiber.StatusConflict, "semester contains courses that cannot be archived")
		case errors.Is(err, models.ErrMixedArchivalState):
			return utils.SendError(c, fiber.StatusConflict, "semester courses are in a mixed archival state")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("semester_id", semesterID).Msg("failed to archive semester")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to archive semester")
	}

	return utils.SendSuccess(c, "semester archived", fiber.Map{"semester_id": semesterID})
}

func (h *SemesterHandler) archiveCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	actor := activityActorFromContext(c)
	if err := h.archive.ArchiveCourse(c.Context(), courseID, actor); err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case errors.Is(err, models.ErrNotArchiveable):
			return utils.SendError(c, fiber.StatusConflict, "course cannot be archived in its current state")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", courseID).Msg("failed to archive course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to archive course")
	}

	return utils.SendSuccess(c, "course archived", fiber.Map{"course_id": courseID})
}

func (h *SemesterHandler) overview(c *fiber.Ctx) error {
	semesterID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid semester id")
	}

	overview, err := h.archive.SemesterOverview(c.Context(), semesterID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSemesterNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "semester not found")
		case errors.Is(err, models.ErrMixedArchivalState):
			return utils.SendError(c, fiber.StatusConflict, "semester courses are in a mixed archival state")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("semester_id", semesterID).Msg("failed to build overview")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build semester overview")
	}

	return utils.SendSuccess(c, "semester overview retrieved", overview)
}
