package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/marcomartinez12/playzone/internal/auth/dto"
)

const userLocalKey = "current_user"

// RequireAuth validates the bearer access token and stores the resolved
// user in the request locals.
func (h *AuthHandler) RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
	}

	user, err := h.service.CurrentUser(c.Context(), token)
	if err != nil {
		return fail(c, err)
	}

	c.Locals(userLocalKey, user)
	return c.Next()
}

func currentUser(c *fiber.Ctx) *dto.UserOutput {
	user, _ := c.Locals(userLocalKey).(*dto.UserOutput)
	if user == nil {
		// Only reachable on routes missing RequireAuth; treat as anonymous.
		return &dto.UserOutput{}
	}
	return user
}
