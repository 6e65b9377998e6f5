package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/service"
	"github.com/astralremix/api/pkg/response"
)

type BatchHandler struct {
	service   *service.BatchService
	validator *validator.Validate
}

func NewBatchHandler(svc *service.BatchService, v *validator.Validate) *BatchHandler {
	return &BatchHandler{
		service:   svc,
		validator: v,
	}
}

// Run handles POST /api/batch. With async=true the batch is handed to the
// worker and 202 is returned with the created queue items; otherwise the
// request blocks until every URL has been processed.
func (h *BatchHandler) Run(c *fiber.Ctx) error {
	var req model.BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if req.Async {
		accepted, err := h.service.Submit(c.Context(), &req)
		if err != nil {
			if errors.Is(err, service.ErrBackgroundUnavailable) {
				return response.NotConfigured(c, err.Error())
			}
			return response.ServiceError(c, err.Error())
		}
		return response.Accepted(c, accepted)
	}

	result, err := h.service.Run(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, result)
}
