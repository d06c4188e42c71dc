package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/service"
	"github.com/phSch08/EvaP/internal/utils"
)

// UserHandler serves the login-key endpoints for external users.
type UserHandler struct {
	users  service.UserService
	logger zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register wires the login-key routes.
func (h *UserHandler) Register(router fiber.Router) {
	router.Post("/users/:id/login-key", h.generate)
	router.Post("/users/:id/login-key/refresh", h.refresh)
}

func (h *UserHandler) generate(c *fiber.Ctx) error {
	return h.issue(c, h.users.GenerateLoginKey, "login key generated")
}

func (h *UserHandler) refresh(c *fiber.Ctx) error {
	return h.issue(c, h.users.RefreshLoginKey, "login key refreshed")
}

func (h *UserHandler) issue(c *fiber.Ctx, apply func(context.Context, uint) (dto.LoginKeyResponse, error), message string) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	key, err := apply(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrNoLoginKeyNeeded):
			return utils.SendError(c, fiber.StatusConflict, "user does not need a login key")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", userID).Msg("failed to issue login key")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to issue login key")
	}

	return utils.SendSuccess(c, message, key)
}
