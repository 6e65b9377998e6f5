package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/service"
	"github.com/astralremix/api/pkg/response"
)

type CreatorHandler struct {
	service   *service.CreatorService
	validator *validator.Validate
}

func NewCreatorHandler(svc *service.CreatorService, v *validator.Validate) *CreatorHandler {
	return &CreatorHandler{
		service:   svc,
		validator: v,
	}
}

// List handles GET /api/creators
func (h *CreatorHandler) List(c *fiber.Ctx) error {
	creators, err := h.service.List(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	if creators == nil {
		creators = []model.Creator{}
	}
	return response.OK(c, creators)
}

// Create handles POST /api/creators
func (h *CreatorHandler) Create(c *fiber.Ctx) error {
	var req model.CreateCreatorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	creator, err := h.service.Add(c.Context(), &req)
	if err != nil {
		if service.KindOf(err) == service.KindValidation {
			return response.ValidationError(c, err.Error(), nil)
		}
		return response.ServiceError(c, err.Error())
	}
	return response.Created(c, creator)
}

// Delete handles DELETE /api/creators/:id
func (h *CreatorHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Creator ID is required", nil)
	}

	if err := h.service.Remove(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrCreatorNotFound) {
			return response.NotFound(c, "Creator not found")
		}
		return response.ServiceError(c, err.Error())
	}
	return response.NoContent(c)
}

// Videos handles GET /api/creators/videos?limit=
func (h *CreatorHandler) Videos(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", service.DefaultScanLimit)
	if limit < 1 || limit > 50 {
		return response.ValidationError(c, "Validation failed", fiber.Map{"limit": "range"})
	}

	videos, err := h.service.ScanAll(c.Context(), limit)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, videos)
}

// ChannelVideos handles GET /api/creators/:channelId/videos
func (h *CreatorHandler) ChannelVideos(c *fiber.Ctx) error {
	channelID := c.Params("channelId")
	if channelID == "" {
		return response.ValidationError(c, "Channel ID is required", nil)
	}

	videos, err := h.service.ScanChannel(c.Context(), channelID)
	if err != nil {
		if errors.Is(err, client.ErrYouTubeNotConfigured) {
			return response.NotConfigured(c, err.Error())
		}
		return response.UpstreamError(c, err.Error())
	}
	return response.OK(c, videos)
}
