package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/service"
	"github.com/astralremix/api/pkg/response"
)

type RemixHandler struct {
	service   *service.RemixService
	validator *validator.Validate
}

func NewRemixHandler(svc *service.RemixService, v *validator.Validate) *RemixHandler {
	return &RemixHandler{
		service:   svc,
		validator: v,
	}
}

// Video handles POST /api/remix/video
func (h *RemixHandler) Video(c *fiber.Ctx) error {
	var req model.RemixRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.RemixResult{Error: "Invalid request body"})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.RemixResult{Error: validationMessage(err)})
	}

	pack, err := h.service.RemixVideo(c.Context(), &req)
	if err != nil {
		return h.fail(c, req.URL, err)
	}
	return response.OK(c, model.RemixResult{Success: true, Data: pack})
}

// Article handles POST /api/remix/article
func (h *RemixHandler) Article(c *fiber.Ctx) error {
	var req model.ArticleRemixRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.RemixResult{Error: "Invalid request body"})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.RemixResult{Error: validationMessage(err)})
	}

	pack, err := h.service.RemixArticle(c.Context(), &req)
	if err != nil {
		return h.fail(c, req.URL, err)
	}
	return response.OK(c, model.RemixResult{Success: true, Data: pack})
}

// LinkedIn handles POST /api/remix/linkedin. Only the remix section is
// returned; the caller patches its stored pack.
func (h *RemixHandler) LinkedIn(c *fiber.Ctx) error {
	var req model.LinkedInRegenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.RemixResult{Error: "Invalid request body"})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.RemixResult{Error: validationMessage(err)})
	}

	remix, err := h.service.RegenerateLinkedIn(c.Context(), &req)
	if err != nil {
		return h.fail(c, "", err)
	}
	return response.OK(c, model.LinkedInRegenerateResult{Success: true, Data: remix})
}

// List handles GET /api/remixes
func (h *RemixHandler) List(c *fiber.Ctx) error {
	records, err := h.service.ListRemixes(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, records)
}

func (h *RemixHandler) fail(c *fiber.Ctx, url string, err error) error {
	status := remixStatus(err)
	log.Error().Err(err).Str("url", url).Str("kind", string(service.KindOf(err))).Int("status", status).Msg("remix failed")
	return c.Status(status).JSON(service.FailureResult(err))
}
