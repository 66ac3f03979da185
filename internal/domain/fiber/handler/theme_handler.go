package handler

import (
	"github.com/fadilmartias/klarus-hr/internal/middleware"
	"github.com/fadilmartias/klarus-hr/internal/usecase"
	"github.com/fadilmartias/klarus-hr/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ThemeHandler struct {
	uc *usecase.ThemeUsecase
}

func NewThemeHandler(uc *usecase.ThemeUsecase) *ThemeHandler {
	return &ThemeHandler{uc: uc}
}

func (h *ThemeHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	g := app.Group("/themes", auth)
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Delete("/:id", h.Delete)
}

func (h *ThemeHandler) Create(c *fiber.Ctx) error {
	var in usecase.CreateThemeInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	theme, err := h.uc.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Theme created, sample posts are being generated",
		Data:    theme,
	})
}

func (h *ThemeHandler) List(c *fiber.Ctx) error {
	themes, err := h.uc.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get themes",
		Data:    themes,
	})
}

func (h *ThemeHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid theme id", err)
	}
	theme, err := h.uc.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get theme",
		Data:    theme,
	})
}

func (h *ThemeHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid theme id", err)
	}
	if err := h.uc.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success delete theme"})
}
