package runapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/run"
	"github.com/Abraxas-365/cvscreen/screening/run/runsrv"
	"github.com/Abraxas-365/cvscreen/screening/user/userauth"
)

type Handlers struct {
	service *runsrv.Service
}

func NewHandlers(service *runsrv.Service) *Handlers {
	return &Handlers{service: service}
}

// Rank scores resumes against a job description and records a run
// POST /api/screening/rank
func (h *Handlers) Rank(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	var req run.RankRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	}
	if req.JobDescriptionID.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "Job description ID is required")
	}

	resp, err := h.service.Rank(c.Context(), userID, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListRuns lists the user's screening runs
// GET /api/screening/runs
func (h *Handlers) ListRuns(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	pagination := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	runs, err := h.service.ListRuns(c.Context(), userID, pagination)
	if err != nil {
		return err
	}

	return c.JSON(runs)
}

// GetRun returns one run with its frozen results
// GET /api/screening/runs/:runId
func (h *Handlers) GetRun(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	runID := kernel.NewRunID(c.Params("runId"))
	if runID.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "Run ID is required")
	}

	resp, err := h.service.GetRun(c.Context(), userID, runID)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// RegisterRoutes registers screening routes, all behind auth
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware fiber.Handler) {
	api := app.Group("/api/screening", authMiddleware)

	api.Post("/rank", handlers.Rank)
	api.Get("/runs", handlers.ListRuns)
	api.Get("/runs/:runId", handlers.GetRun)
}
