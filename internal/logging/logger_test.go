package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"disabled", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInitWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("info", "json", &buf)
	defer InitWithWriter("info", "json", &bytes.Buffer{})

	log.Info().Str("stage", "fetch").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"stage":"fetch"`) {
		t.Errorf("expected structured field in output, got: %s", out)
	}
	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("expected level in output, got: %s", out)
	}
}

func TestInitRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("error", "json", &buf)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Info().Msg("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info to be suppressed at error level, got: %s", buf.String())
	}
}

func TestDefaultFormat(t *testing.T) {
	if got := DefaultFormat("development", ""); got != "console" {
		t.Errorf("expected console in development, got %s", got)
	}
	if got := DefaultFormat("production", ""); got != "json" {
		t.Errorf("expected json in production, got %s", got)
	}
	if got := DefaultFormat("development", "json"); got != "json" {
		t.Errorf("expected explicit format to win, got %s", got)
	}
}
