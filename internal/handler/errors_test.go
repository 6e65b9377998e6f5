package handler

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/service"
)

func TestRemixStatus(t *testing.T) {
	tests := []struct {
		kind service.ErrorKind
		want int
	}{
		{service.KindValidation, fiber.StatusBadRequest},
		{service.KindDownload, fiber.StatusBadGateway},
		{service.KindAssetProcessing, fiber.StatusBadGateway},
		{service.KindGeneration, fiber.StatusBadGateway},
		{service.KindTimeout, fiber.StatusGatewayTimeout},
		{service.KindPersistence, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := &service.PipelineError{Kind: tt.kind, Message: "x"}
			assert.Equal(t, tt.want, remixStatus(err))
		})
	}
	assert.Equal(t, fiber.StatusInternalServerError, remixStatus(errors.New("boom")))
}

func TestValidationMessage(t *testing.T) {
	v := validator.New()

	err := v.Struct(&model.RemixRequest{})
	assert.Equal(t, "URL is required", validationMessage(err))

	err = v.Struct(&model.RemixRequest{URL: "not a url"})
	assert.Equal(t, "URL must be a valid URL", validationMessage(err))

	err = v.Struct(&model.RemixRequest{URL: "https://x.com/v", Style: "loud"})
	assert.Equal(t, "Style must be one of: punchy explainer deepdive", validationMessage(err))
}

func TestFormatValidationErrors(t *testing.T) {
	err := validator.New().Struct(&model.ShareRequest{})
	got, ok := formatValidationErrors(err).(map[string]string)
	assert.True(t, ok)
	assert.Equal(t, "required", got["Text"])
}
