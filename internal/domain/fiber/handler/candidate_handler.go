package handler

import (
	"io"
	"mime/multipart"
	"time"

	"github.com/fadilmartias/klarus-hr/internal/middleware"
	"github.com/fadilmartias/klarus-hr/internal/response"
	"github.com/fadilmartias/klarus-hr/internal/usecase"
	"github.com/fadilmartias/klarus-hr/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CandidateHandler struct {
	uc *usecase.CandidateUsecase
}

func NewCandidateHandler(uc *usecase.CandidateUsecase) *CandidateHandler {
	return &CandidateHandler{uc: uc}
}

func (h *CandidateHandler) RegisterRoutes(app *fiber.App, auth, webhook fiber.Handler) {
	app.Post("/public/jobs/:id/apply", middleware.RateLimiter(5, time.Minute), h.Apply)
	app.Post("/webhooks/candidates", webhook, h.Webhook)

	g := app.Group("/candidates", auth)
	g.Post("/bulk", h.BulkUpload)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Post("/:id/analyze", middleware.RateLimiter(10, time.Minute), h.Analyze)
}

func uploadFile(fh *multipart.FileHeader) usecase.UploadFile {
	return usecase.UploadFile{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (h *CandidateHandler) Apply(c *fiber.Ctx) error {
	jobID, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid job id", err)
	}
	cv, err := c.FormFile("cv")
	if err != nil {
		return badRequest(c, "cv file is required", err)
	}

	candidate, err := h.uc.Apply(c.UserContext(), jobID, usecase.ApplyInput{
		Name:  c.FormValue("name"),
		Email: c.FormValue("email"),
		Phone: c.FormValue("phone"),
		CV:    uploadFile(cv),
	})
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Application submitted",
		Data:    fiber.Map{"id": candidate.ID},
	})
}

func (h *CandidateHandler) BulkUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "multipart form is required", err)
	}
	headers := form.File["files[]"]
	if len(headers) == 0 {
		headers = form.File["files"]
	}

	var jobID *uuid.UUID
	if raw := c.FormValue("job_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid job_id", err)
		}
		jobID = &id
	}

	files := make([]usecase.UploadFile, len(headers))
	for i, fh := range headers {
		files[i] = uploadFile(fh)
	}

	candidates, err := h.uc.BulkUpload(c.UserContext(), middleware.UserID(c), jobID, files)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success upload CVs",
		Data:    candidates,
	})
}

func (h *CandidateHandler) List(c *fiber.Ctx) error {
	var jobID *uuid.UUID
	if raw := c.Query("job_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid job_id", err)
		}
		jobID = &id
	}
	items, total, page, pageSize, err := h.uc.List(c.UserContext(), middleware.UserID(c), jobID, c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get candidates",
		Data:       items,
		Pagination: response.NewPagination(page, pageSize, total),
	})
}

func (h *CandidateHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid candidate id", err)
	}
	candidate, err := h.uc.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get candidate",
		Data:    candidate,
	})
}

func (h *CandidateHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid candidate id", err)
	}
	var in usecase.UpdateCandidateInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	candidate, err := h.uc.Update(c.UserContext(), middleware.UserID(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update candidate",
		Data:    candidate,
	})
}

func (h *CandidateHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid candidate id", err)
	}
	if err := h.uc.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success delete candidate"})
}

func (h *CandidateHandler) Analyze(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid candidate id", err)
	}
	candidate, err := h.uc.Analyze(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success analyze candidate",
		Data:    candidate,
	})
}

func (h *CandidateHandler) Webhook(c *fiber.Ctx) error {
	var in usecase.WebhookCandidateInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	candidate, err := h.uc.IngestWebhook(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Candidate received",
		Data:    fiber.Map{"id": candidate.ID},
	})
}
