package handler

import (
	"errors"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/service"
	"github.com/astralremix/api/pkg/response"
)

type QueueHandler struct {
	service   *service.QueueService
	validator *validator.Validate
}

func NewQueueHandler(svc *service.QueueService, v *validator.Validate) *QueueHandler {
	return &QueueHandler{
		service:   svc,
		validator: v,
	}
}

// List handles GET /api/queue with an optional ?status= filter
func (h *QueueHandler) List(c *fiber.Ctx) error {
	status := model.QueueStatus(c.Query("status"))
	if status != "" && !slices.Contains(model.ValidQueueStatuses, status) {
		return response.ValidationError(c, "Invalid status", fiber.Map{"status": "oneof"})
	}

	var (
		items []model.QueueItem
		err   error
	)
	switch status {
	case "":
		items, err = h.service.List(c.Context())
	case model.QueueStatusCompleted:
		items, err = h.service.Completed(c.Context())
	case model.QueueStatusScheduled:
		items, err = h.service.Scheduled(c.Context())
	default:
		items, err = h.service.List(c.Context())
		items = slices.DeleteFunc(items, func(it model.QueueItem) bool { return it.Status != status })
	}
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	if items == nil {
		items = []model.QueueItem{}
	}
	return response.OK(c, items)
}

// Stats handles GET /api/queue/stats
func (h *QueueHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, stats)
}

// Scheduled handles GET /api/queue/scheduled
func (h *QueueHandler) Scheduled(c *fiber.Ctx) error {
	items, err := h.service.Scheduled(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	if items == nil {
		items = []model.QueueItem{}
	}
	return response.OK(c, items)
}

// Get handles GET /api/queue/:id
func (h *QueueHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Queue item ID is required", nil)
	}

	item, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.queueError(c, err)
	}
	return response.OK(c, item)
}

// Schedule handles POST /api/queue/:id/schedule
func (h *QueueHandler) Schedule(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Queue item ID is required", nil)
	}

	var req model.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	item, err := h.service.Schedule(c.Context(), id, req.ScheduledFor, req.Platform)
	if err != nil {
		return h.queueError(c, err)
	}
	return response.OK(c, item)
}

// Delete handles DELETE /api/queue/:id
func (h *QueueHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Queue item ID is required", nil)
	}

	if err := h.service.Remove(c.Context(), id); err != nil {
		return h.queueError(c, err)
	}
	return response.NoContent(c)
}

func (h *QueueHandler) queueError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrQueueItemNotFound):
		return response.NotFound(c, "Queue item not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	default:
		return response.ServiceError(c, err.Error())
	}
}
