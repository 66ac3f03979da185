package handler

import (
	"github.com/fadilmartias/klarus-hr/internal/dto"
	"github.com/fadilmartias/klarus-hr/internal/middleware"
	"github.com/fadilmartias/klarus-hr/internal/usecase"
	"github.com/fadilmartias/klarus-hr/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ContentHandler struct {
	uc *usecase.ContentUsecase
}

func NewContentHandler(uc *usecase.ContentUsecase) *ContentHandler {
	return &ContentHandler{uc: uc}
}

func (h *ContentHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	app.Post("/content/generate", auth, h.Generate)
}

func (h *ContentHandler) Generate(c *fiber.Ctx) error {
	var in usecase.GenerateContentInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body", err)
	}
	text, err := h.uc.Generate(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success generate content",
		Data:    dto.GenerateContentResponse{Content: text},
	})
}
