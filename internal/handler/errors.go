package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/astralremix/api/internal/service"
)

// formatValidationErrors maps each failing field to the rule it broke
func formatValidationErrors(err error) interface{} {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		out := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			out[e.Field()] = e.Tag()
		}
		return out
	}
	return err.Error()
}

// validationMessage renders validator errors as a single sentence for
// endpoints that answer with a RemixResult instead of an error envelope.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err.Error()
	}
	e := validationErrors[0]
	name := e.Field()
	if strings.EqualFold(name, "url") {
		name = "URL"
	}
	switch e.Tag() {
	case "required":
		return name + " is required"
	case "url":
		return name + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, e.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, e.Tag())
	}
}

// remixStatus maps a pipeline error to the HTTP status of a remix endpoint
func remixStatus(err error) int {
	switch service.KindOf(err) {
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindTimeout:
		return fiber.StatusGatewayTimeout
	case service.KindDownload, service.KindAssetProcessing, service.KindGeneration:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
