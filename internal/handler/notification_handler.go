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

// NotificationHandler serves the staff notification endpoints.
type NotificationHandler struct {
	notifications service.NotificationService
	validate      *validator.Validate
	logger        zerolog.Logger
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(notifications service.NotificationService, validate *validator.Validate, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		validate:      validate,
		logger:        logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register wires the notification routes.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Post("/courses", h.notifyCourses)
	router.Post("/recipients", h.resolveRecipients)
	router.Post("/reminders", h.sendReminder)
}

func (h *NotificationHandler) notifyCourses(c *fiber.Ctx) error {
	var payload dto.NotifyCoursesRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.notifications.SendToUsersInCourses(c.Context(), payload.Template, payload.CourseIDs, payload.Groups)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "email template not found")
		case errors.Is(err, service.ErrUnknownRecipientGroup):
			return utils.SendError(c, fiber.StatusBadRequest, "unknown recipient group")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("template", payload.Template).Msg("failed to dispatch notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to dispatch notifications")
	}

	return utils.SendSuccess(c, "notifications dispatched", result)
}

func (h *NotificationHandler) resolveRecipients(c *fiber.Ctx) error {
	var payload dto.NotifyCoursesRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.Template = "preview"
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	recipients, err := h.notifications.ResolveRecipients(c.Context(), payload.CourseIDs, payload.Groups)
	if err != nil {
		if errors.Is(err, service.ErrUnknownRecipientGroup) {
			return utils.SendError(c, fiber.StatusBadRequest, "unknown recipient group")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to resolve recipients")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve recipients")
	}

	responses := make([]dto.RecipientResponse, 0, len(recipients))
	for _, recipient := range recipients {
		courseIDs := make([]uint, 0, len(recipient.Courses))
		for _, course := range recipient.Courses {
			courseIDs = append(courseIDs, course.ID)
		}
		responses = append(responses, dto.RecipientResponse{
			UserID:    recipient.User.ID,
			Email:     recipient.User.Email,
			FullName:  recipient.User.FullName(),
			CourseIDs: courseIDs,
		})
	}

	return utils.SendSuccess(c, "recipients resolved", responses)
}

func (h *NotificationHandler) sendReminder(c *fiber.Ctx) error {
	var payload dto.ReminderRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.notifications.SendReminder(c.Context(), payload.UserID, payload.DaysLeft, payload.DueCourseIDs); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrTemplateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "email template not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", payload.UserID).Msg("failed to send reminder")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to send reminder")
	}

	return utils.SendSuccess(c, "reminder sent", fiber.Map{"user_id": payload.UserID})
}
