package uploadapi

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/upload"
	"github.com/Abraxas-365/cvscreen/screening/upload/uploadsrv"
	"github.com/Abraxas-365/cvscreen/screening/user/userauth"
)

type Handlers struct {
	service *uploadsrv.Service
}

func NewHandlers(service *uploadsrv.Service) *Handlers {
	return &Handlers{service: service}
}

// CreateBatch uploads a batch of resume files
// POST /api/uploads/batch
func (h *Handlers) CreateBatch(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Multipart form required")
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return upload.ErrNoFiles()
	}

	files := make([]upload.FileUpload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Failed to read file: "+fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Failed to read file: "+fh.Filename)
		}

		files = append(files, upload.FileUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Data:     data,
		})
	}

	req := upload.CreateBatchRequest{
		UserID: userID,
		Files:  files,
	}
	if name := c.FormValue("batch_name"); name != "" {
		req.BatchName = &name
	}

	batch, err := h.service.CreateBatch(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(batch)
}

// GetBatch returns a batch with per-resume processing states
// GET /api/uploads/batch/:batchId
func (h *Handlers) GetBatch(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	batchID := kernel.NewBatchID(c.Params("batchId"))
	if batchID.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "Batch ID is required")
	}

	batch, err := h.service.GetBatch(c.Context(), userID, batchID)
	if err != nil {
		return err
	}

	return c.JSON(batch)
}

// ListBatches returns the user's batches with aggregated counts
// GET /api/uploads/batches
func (h *Handlers) ListBatches(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	pagination := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	batches, err := h.service.ListBatches(c.Context(), userID, pagination)
	if err != nil {
		return err
	}

	return c.JSON(batches)
}

// DeleteBatch removes a batch with its resumes and stored files
// DELETE /api/uploads/batch/:batchId
func (h *Handlers) DeleteBatch(c *fiber.Ctx) error {
	userID, ok := userauth.GetUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	batchID := kernel.NewBatchID(c.Params("batchId"))
	if batchID.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "Batch ID is required")
	}

	if err := h.service.DeleteBatch(c.Context(), userID, batchID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// RegisterRoutes registers upload routes, all behind auth
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware fiber.Handler) {
	api := app.Group("/api/uploads", authMiddleware)

	api.Post("/batch", handlers.CreateBatch)
	api.Get("/batches", handlers.ListBatches)
	api.Get("/batch/:batchId", handlers.GetBatch)
	api.Delete("/batch/:batchId", handlers.DeleteBatch)
}
