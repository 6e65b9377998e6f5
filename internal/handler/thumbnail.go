package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/astralremix/api/internal/thumbnail"
	"github.com/astralremix/api/pkg/response"
)

// Thumbnail handles GET /api/thumbnail?title=. It is public so that social
// networks can fetch the image without credentials.
func Thumbnail(c *fiber.Ctx) error {
	png, err := thumbnail.Render(c.Query("title"))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(png)
}
