package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/service"
	"github.com/astralremix/api/pkg/response"
)

type LinkedInHandler struct {
	service   *service.LinkedInService
	validator *validator.Validate
}

func NewLinkedInHandler(svc *service.LinkedInService, v *validator.Validate) *LinkedInHandler {
	return &LinkedInHandler{
		service:   svc,
		validator: v,
	}
}

// Share handles POST /api/linkedin/share
func (h *LinkedInHandler) Share(c *fiber.Ctx) error {
	var req model.ShareRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Share(c.Context(), &req)
	if err != nil {
		switch {
		case service.IsNotConfigured(err):
			return response.NotConfigured(c, err.Error())
		case service.KindOf(err) == service.KindValidation:
			return response.ValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Msg("linkedin share failed")
		return response.UpstreamError(c, err.Error())
	}
	return response.OK(c, result)
}
