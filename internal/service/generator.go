package service

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/genai"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/prompt"
)

// Generator turns a prompt and an optional uploaded asset into raw JSON text
type Generator interface {
	Generate(ctx context.Context, prompt string, asset *client.RemoteFile) (string, error)
}

// SchemaModel is a backend that enforces a response schema
type SchemaModel interface {
	GenerateJSON(ctx context.Context, prompt string, asset *client.RemoteFile, schema *genai.Schema) (string, error)
}

// TextModel is a backend that returns free text
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SchemaGenerator asks the model for output constrained to the content pack schema
type SchemaGenerator struct {
	model  SchemaModel
	schema *genai.Schema
}

func NewSchemaGenerator(m SchemaModel) *SchemaGenerator {
	return &SchemaGenerator{model: m, schema: prompt.ContentPackSchema()}
}

func (g *SchemaGenerator) Generate(ctx context.Context, p string, asset *client.RemoteFile) (string, error) {
	return g.model.GenerateJSON(ctx, p, asset, g.schema)
}

// FastGenerator describes the schema in the prompt and hopes for the best
type FastGenerator struct {
	model TextModel
}

func NewFastGenerator(m TextModel) *FastGenerator {
	return &FastGenerator{model: m}
}

func (g *FastGenerator) Generate(ctx context.Context, p string, asset *client.RemoteFile) (string, error) {
	uri := ""
	if asset != nil {
		uri = asset.URI
	}
	return g.model.Generate(ctx, prompt.FastInstruction(p, uri))
}

var packValidator = newJSONValidator()

// newJSONValidator reports fields by their JSON names.
func newJSONValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseContentPack decodes generator output. Surrounding prose or code fences
// are ignored; the three top-level sections must be present.
func ParseContentPack(raw string) (*model.ContentPack, error) {
	body := extractJSONObject(raw)
	if body == "" {
		return nil, newPipelineError(KindGeneration, nil, "Failed to parse model response: no JSON object found")
	}

	var pack model.ContentPack
	if err := json.Unmarshal([]byte(body), &pack); err != nil {
		return nil, newPipelineError(KindGeneration, err, "Failed to parse model response: %v", err)
	}
	if err := packValidator.Struct(&pack); err != nil {
		return nil, newPipelineError(KindGeneration, err, "Failed to parse model response: %s", missingSections(err))
	}
	return &pack, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func missingSections(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return fmt.Sprintf("missing %s", strings.Join(names, ", "))
}
