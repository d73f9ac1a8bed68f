package jdapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/jd"
	"github.com/Abraxas-365/cvscreen/screening/jd/jdsrv"
	"github.com/Abraxas-365/cvscreen/screening/user/userauth"
)

type Handlers struct {
	service *jdsrv.Service
}

func NewHandlers(service *jdsrv.Service) *Handlers {
	return &Handlers{service: service}
}

// Create creates a job description
// POST /api/job-descriptions
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	var req jd.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	}

	created, err := h.service.Create(c.Context(), userID, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Get retrieves a job description
// GET /api/job-descriptions/:jdId
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	jdID := kernel.NewJobDescriptionID(c.Params("jdId"))
	if jdID.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "Job description ID is required")
	}

	found, err := h.service.Get(c.Context(), userID, jdID)
	if err != nil {
		return err
	}

	return c.JSON(found)
}

// List returns the user's job descriptions
// GET /api/job-descriptions
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	pagination := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	page, err := h.service.List(c.Context(), userID, pagination)
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// Update changes title and/or text
// PUT /api/job-descriptions/:jdId
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	jdID := kernel.NewJobDescriptionID(c.Params("jdId"))
	if jdID.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "Job description ID is required")
	}

	var req jd.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	}

	updated, err := h.service.Update(c.Context(), userID, jdID, req)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// Delete removes a job description and its runs
// DELETE /api/job-descriptions/:jdId
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	jdID := kernel.NewJobDescriptionID(c.Params("jdId"))
	if jdID.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "Job description ID is required")
	}

	if err := h.service.Delete(c.Context(), userID, jdID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// RegisterRoutes registers job description routes, all behind auth
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware fiber.Handler) {
	api := app.Group("/api/job-descriptions", authMiddleware)

	api.Post("/", handlers.Create)
	api.Get("/", handlers.List)
	api.Get("/:jdId", handlers.Get)
	api.Put("/:jdId", handlers.Update)
	api.Delete("/:jdId", handlers.Delete)
}
