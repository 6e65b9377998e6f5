// Package prompt builds the generation prompts. Everything here is pure:
// the same options always produce the same text.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/astralremix/api/internal/model"
)

//go:embed prompts.yaml
var rawTemplates []byte

type templates struct {
	Base                string            `yaml:"base"`
	Styles              map[string]string `yaml:"styles"`
	LinkedInTones       map[string]string `yaml:"linkedin_tones"`
	LinkedInInstruction string            `yaml:"linkedin_instruction"`
}

var tmpl = mustParse(rawTemplates)

func mustParse(data []byte) *templates {
	var t templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		panic(fmt.Sprintf("prompt: invalid embedded templates: %v", err))
	}
	return &t
}

// Options selects the prompt variant. A non-empty Tone produces a LinkedIn
// regeneration prompt for SourceText; otherwise Style is used and SourceText,
// when present, is appended as article content.
type Options struct {
	Style       model.Style
	Tone        model.LinkedInTone
	SourceTitle string
	SourceText  string
}

// Build assembles the prompt for opts.
func Build(opts Options) (string, error) {
	if opts.Tone != "" {
		return linkedIn(opts.Tone, opts.SourceText)
	}

	base, err := ForStyle(opts.Style)
	if err != nil {
		return "", err
	}
	if opts.SourceText == "" {
		return base, nil
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nARTICLE TITLE: ")
	b.WriteString(opts.SourceTitle)
	b.WriteString("\n\nARTICLE CONTENT:\n")
	b.WriteString(opts.SourceText)
	return b.String(), nil
}

// ForStyle returns the base prompt with the style modifier appended.
// An empty style means punchy.
func ForStyle(style model.Style) (string, error) {
	if style == "" {
		style = model.StylePunchy
	}
	modifier, ok := tmpl.Styles[string(style)]
	if !ok || !style.IsValid() {
		return "", fmt.Errorf("unknown style %q", style)
	}
	return tmpl.Base + "\n" + modifier, nil
}

func linkedIn(tone model.LinkedInTone, source string) (string, error) {
	modifier, ok := tmpl.LinkedInTones[string(tone)]
	if !ok || !tone.IsValid() {
		return "", fmt.Errorf("unknown linkedin tone %q", tone)
	}
	instruction := strings.Replace(tmpl.LinkedInInstruction, "{{source}}", source, 1)
	return tmpl.Base + "\n" + modifier + "\n" + instruction, nil
}

// FastInstruction wraps a prompt for the unconstrained backend: the asset
// reference (if any) and a description of the expected JSON are appended.
func FastInstruction(prompt, assetURI string) string {
	var b strings.Builder
	b.WriteString(prompt)
	if assetURI != "" {
		b.WriteString("\n\nVideo URI: ")
		b.WriteString(assetURI)
	}
	b.WriteString("\n\nGenerate a JSON response matching the content pack schema:\n")
	b.WriteString(Describe(ContentPackSchema()))
	return b.String()
}
