package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	auth := app.Group("/api/v1/auth")

	auth.Post("/login", h.Login)
	auth.Post("/register", h.Register)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/forgot-password", h.ForgotPassword)
	auth.Post("/reset-password", h.ResetPassword)

	auth.Post("/logout", h.RequireAuth, h.Logout)
	auth.Post("/logout-all", h.RequireAuth, h.LogoutAll)
	auth.Get("/me", h.RequireAuth, h.Me)
}
