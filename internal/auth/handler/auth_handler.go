package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/marcomartinez12/playzone/internal/auth/dto"
	autherrors "github.com/marcomartinez12/playzone/internal/errors"
)

// AuthService is the surface the HTTP layer consumes.
type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error)
	Register(ctx context.Context, input dto.RegisterInput) (*dto.UserOutput, error)
	Refresh(ctx context.Context, input dto.RefreshInput) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string, userID int, username, ip string) error
	LogoutAll(ctx context.Context, userID int, username, ip string) (int64, error)
	RequestPasswordReset(ctx context.Context, email, ip string) string
	ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error
	CurrentUser(ctx context.Context, accessToken string) (*dto.UserOutput, error)
}

type AuthHandler struct {
	service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// statusFromError maps service sentinels to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, autherrors.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, autherrors.ErrInvalidCredentials),
		errors.Is(err, autherrors.ErrUnauthorized),
		errors.Is(err, autherrors.ErrTokenExpired),
		errors.Is(err, autherrors.ErrTokenInvalid):
		return fiber.StatusUnauthorized
	case errors.Is(err, autherrors.ErrUserInactive),
		errors.Is(err, autherrors.ErrUserDeleted):
		return fiber.StatusForbidden
	case errors.Is(err, autherrors.ErrAlreadyExists),
		errors.Is(err, autherrors.ErrInvalidResetToken):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFromError(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if input.Username == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}

	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	tokens, err := h.service.Login(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if input.Username == "" || input.Email == "" || len(input.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username, email and a password of at least 8 characters are required",
		})
	}
	input.IPAddress = c.IP()

	user, err := h.service.Register(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	tokens, err := h.service.Refresh(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	user := currentUser(c)
	if err := h.service.Logout(c.Context(), input.RefreshToken, user.ID, user.Username, c.IP()); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "session closed"})
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	user := currentUser(c)
	count, err := h.service.LogoutAll(c.Context(), user.ID, user.Username, c.IP())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "all sessions closed", "revoked": count})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input dto.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	message := h.service.RequestPasswordReset(c.Context(), input.Email, c.IP())
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if input.Token == "" || len(input.NewPassword) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "token and a password of at least 8 characters are required",
		})
	}
	input.IPAddress = c.IP()

	if err := h.service.ResetPassword(c.Context(), input); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "password updated"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(currentUser(c))
}
