package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":       zerolog.InfoLevel,
		"debug":  zerolog.DebugLevel,
		"WARN":   zerolog.WarnLevel,
		" error": zerolog.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if got, err := ParseLevel("loud"); err == nil || got != zerolog.InfoLevel {
		t.Errorf("ParseLevel(loud) = %v, %v", got, err)
	}
}

func TestNewWriterFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter("debug", &buf)
	l.Debug().Str("month", "2024-03").Msg("fetched")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v: %q", err, buf.String())
	}
	for _, key := range []string{"level", "time", "pid", "caller", "month"} {
		if _, ok := line[key]; !ok {
			t.Errorf("missing %q in %v", key, line)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := Into(context.Background(), l)
	fromCtx := From(ctx)
	fromCtx.Info().Msg("hello")
	if buf.Len() == 0 {
		t.Fatalf("logger not carried by context")
	}
}
