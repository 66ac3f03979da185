package handler

import (
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/dto"
	"github.com/fadilmartias/klarus-hr/internal/middleware"
	"github.com/fadilmartias/klarus-hr/internal/usecase"
	"github.com/fadilmartias/klarus-hr/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LinkedInHandler struct {
	uc          *usecase.LinkedInUsecase
	frontendURL string
}

func NewLinkedInHandler(uc *usecase.LinkedInUsecase, frontendURL string) *LinkedInHandler {
	return &LinkedInHandler{uc: uc, frontendURL: frontendURL}
}

func (h *LinkedInHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	app.Get("/linkedin/callback", h.CallbackRedirect)

	g := app.Group("/linkedin", auth)
	g.Get("/status", h.Status)
	g.Post("/connect", h.Connect)
	g.Post("/callback", h.Callback)
	g.Post("/publish", h.Publish)
	g.Get("/posts", h.Posts)
}

func (h *LinkedInHandler) Status(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get LinkedIn status",
		Data:    h.uc.Status(c.UserContext(), middleware.UserID(c)),
	})
}

func (h *LinkedInHandler) Connect(c *fiber.Ctx) error {
	authURL, err := h.uc.Connect(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success start LinkedIn connection",
		Data:    dto.ConnectResponse{AuthorizationURL: authURL},
	})
}

func (h *LinkedInHandler) Callback(c *fiber.Ctx) error {
	var p usecase.CallbackParams
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	if err := h.uc.HandleCallback(c.UserContext(), middleware.UserID(c), p); err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "LinkedIn connected",
		Data:    dto.CallbackResponse{RedirectTo: "/dashboard"},
	})
}

// CallbackRedirect serves the browser redirect from LinkedIn. The state
// identifies the user, so no bearer token is expected.
func (h *LinkedInHandler) CallbackRedirect(c *fiber.Ctx) error {
	var p usecase.CallbackParams
	if err := c.QueryParser(&p); err != nil {
		return badRequest(c, "invalid query parameters", err)
	}
	if err := h.uc.HandleCallback(c.UserContext(), uuid.Nil, p); err != nil {
		message := err.Error()
		var uerr *usecase.Error
		if errors.As(err, &uerr) {
			message = uerr.Message
		}
		return c.Redirect(h.frontendURL+"/dashboard?linkedin_error="+url.QueryEscape(message), fiber.StatusFound)
	}
	return c.Redirect(h.frontendURL+"/dashboard?linkedin=connected", fiber.StatusFound)
}

func (h *LinkedInHandler) Publish(c *fiber.Ctx) error {
	var body dto.PublishRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	if body.JobID == uuid.Nil {
		return badRequest(c, "job_id is required", nil)
	}

	res, err := h.uc.Publish(c.UserContext(), usecase.PublishRequest{
		UserID:         middleware.UserID(c),
		JobID:          body.JobID,
		IdempotencyKey: c.Get("Idempotency-Key"),
		QueueRetry:     body.QueueRetry,
	})
	if err != nil {
		return respondError(c, err)
	}
	if res.IdempotencyKey != "" {
		c.Set("Idempotency-Key", res.IdempotencyKey)
	}

	if res.Queued {
		return util.SuccessResponse(c, util.SuccessResponseFormat{
			Code:    fiber.StatusAccepted,
			Message: "LinkedIn is busy, the post was queued for retry",
			Data:    res,
		})
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success publish to LinkedIn",
		Data:    res,
	})
}

func (h *LinkedInHandler) Posts(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Query("job_id"))
	if err != nil {
		return badRequest(c, "job_id is required", err)
	}
	posts, err := h.uc.Posts(c.UserContext(), middleware.UserID(c), jobID)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get published posts",
		Data:    posts,
	})
}
