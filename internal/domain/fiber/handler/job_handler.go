package handler

import (
	"context"
	"time"

	"github.com/fadilmartias/klarus-hr/internal/dto"
	"github.com/fadilmartias/klarus-hr/internal/middleware"
	"github.com/fadilmartias/klarus-hr/internal/response"
	"github.com/fadilmartias/klarus-hr/internal/usecase"
	"github.com/fadilmartias/klarus-hr/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type JobHandler struct {
	uc *usecase.JobUsecase
}

func NewJobHandler(uc *usecase.JobUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

func (h *JobHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	app.Get("/public/jobs/:id", h.GetPublic)

	g := app.Group("/jobs", auth)
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Patch("/:id/status", h.UpdateStatus)
	g.Delete("/:id", h.Delete)
	g.Post("/:id/applicants/increment", h.IncrementApplicants)
	g.Post("/:id/applicants/decrement", h.DecrementApplicants)
	g.Get("/:id/matches", middleware.RateLimiter(10, time.Minute), h.Matches)
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	var in usecase.CreateJobInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	job, err := h.uc.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create job",
		Data:    dto.NewJobDTO(job, time.Now()),
	})
}

func (h *JobHandler) List(c *fiber.Ctx) error {
	jobs, total, page, pageSize, err := h.uc.List(c.UserContext(), middleware.UserID(c), c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get jobs",
		Data:       dto.NewJobDTOs(jobs, time.Now()),
		Pagination: response.NewPagination(page, pageSize, total),
	})
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid job id", err)
	}
	job, err := h.uc.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get job",
		Data:    dto.NewJobDTO(job, time.Now()),
	})
}

func (h *JobHandler) GetPublic(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid job id", err)
	}
	job, err := h.uc.GetPublic(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get job",
		Data:    dto.NewPublicJobDTO(job),
	})
}

func (h *JobHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid job id", err)
	}
	var in usecase.UpdateJobInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	job, err := h.uc.Update(c.UserContext(), middleware.UserID(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update job",
		Data:    dto.NewJobDTO(job, time.Now()),
	})
}

func (h *JobHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid job id", err)
	}
	var body dto.UpdateJobStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	job, err := h.uc.UpdateStatus(c.UserContext(), middleware.UserID(c), id, body.Status)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update job status",
		Data:    dto.NewJobDTO(job, time.Now()),
	})
}

func (h *JobHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid job id", err)
	}
	if err := h.uc.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success delete job"})
}

func (h *JobHandler) IncrementApplicants(c *fiber.Ctx) error {
	return h.adjustApplicants(c, h.uc.IncrementApplicants)
}

func (h *JobHandler) DecrementApplicants(c *fiber.Ctx) error {
	return h.adjustApplicants(c, h.uc.DecrementApplicants)
}

func (h *JobHandler) adjustApplicants(c *fiber.Ctx, adjust func(ctx context.Context, userID, id uuid.UUID) (int, error)) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid job id", err)
	}
	n, err := adjust(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update applicant count",
		Data:    dto.ApplicantCountDTO{ApplicantCount: n},
	})
}

func (h *JobHandler) Matches(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid job id", err)
	}
	candidates, err := h.uc.Matches(c.UserContext(), middleware.UserID(c), id, c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get matching candidates",
		Data:    candidates,
	})
}
