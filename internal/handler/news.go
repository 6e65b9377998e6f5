package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astralremix/api/internal/service"
	"github.com/astralremix/api/pkg/response"
)

type NewsHandler struct {
	service *service.NewsService
}

func NewNewsHandler(svc *service.NewsService) *NewsHandler {
	return &NewsHandler{service: svc}
}

// Latest handles GET /api/news
func (h *NewsHandler) Latest(c *fiber.Ctx) error {
	items, err := h.service.Latest(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, items)
}
