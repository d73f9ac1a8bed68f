package userauth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/cvscreen/screening/user"
)

type Handlers struct {
	authService *AuthService
}

func NewHandlers(authService *AuthService) *Handlers {
	return &Handlers{authService: authService}
}

// Register creates a new account
// POST /api/auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req user.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	}

	session, err := h.authService.Register(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// Login verifies credentials and returns a session token
// POST /api/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req user.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	}

	session, err := h.authService.Login(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(session)
}

// Me returns the authenticated user's profile
// GET /api/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	userID, ok := GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	profile, err := h.authService.GetProfile(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(user.ToResponse(profile))
}

// RegisterRoutes registers auth routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware fiber.Handler) {
	api := app.Group("/api/auth")

	// Public routes
	api.Post("/register", handlers.Register)
	api.Post("/login", handlers.Login)

	// Protected routes
	api.Get("/me", authMiddleware, handlers.Me)
}
