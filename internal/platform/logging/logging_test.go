package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/jsamuelsen11/go-entity-routing/internal/platform/logging"
)

func TestNew_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{format: "json", want: `"level":"INFO"`},
		{format: "text", want: "level=INFO"},
		{format: "xml", want: `"level":"INFO"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logging.New("info", tt.format, &buf).Info("hello")

			if out := buf.String(); !strings.Contains(out, tt.want) || !strings.Contains(out, "hello") {
				t.Errorf("output = %q, want it to contain %q and the message", out, tt.want)
			}
		})
	}
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level     string
		emit      slog.Level
		wantLines bool
	}{
		{level: "debug", emit: slog.LevelDebug, wantLines: true},
		{level: "DEBUG", emit: slog.LevelDebug, wantLines: true},
		{level: "info", emit: slog.LevelDebug, wantLines: false},
		{level: "error", emit: slog.LevelWarn, wantLines: false},
		{level: "warn+2", emit: slog.LevelWarn, wantLines: false},
		{level: "warn+2", emit: slog.LevelError, wantLines: true},
		{level: "verbose", emit: slog.LevelDebug, wantLines: false},
		{level: "verbose", emit: slog.LevelInfo, wantLines: true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.emit.String(), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logging.New(tt.level, "json", &buf).Log(context.Background(), tt.emit, "probe")

			if got := buf.Len() > 0; got != tt.wantLines {
				t.Errorf("logged = %v, want %v; output = %q", got, tt.wantLines, buf.String())
			}
		})
	}
}

func TestNew_SourceOnlyAtDebug(t *testing.T) {
	t.Parallel()

	var debugBuf, infoBuf bytes.Buffer
	logging.New("debug", "json", &debugBuf).Info("with source")
	logging.New("info", "json", &infoBuf).Info("without source")

	if !strings.Contains(debugBuf.String(), `"source"`) {
		t.Errorf("debug output = %q, want source location", debugBuf.String())
	}
	if strings.Contains(infoBuf.String(), `"source"`) {
		t.Errorf("info output = %q, want no source location", infoBuf.String())
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	if logging.FromContext(context.Background()) != slog.Default() {
		t.Error("FromContext on bare context returned something other than slog.Default()")
	}

	first := logging.New("info", "json", &bytes.Buffer{})
	second := logging.New("debug", "json", &bytes.Buffer{})

	ctx := logging.WithLogger(context.Background(), first)
	if logging.FromContext(ctx) != first {
		t.Error("FromContext returned a different logger than the one stored")
	}
	ctx = logging.WithLogger(ctx, second)
	if logging.FromContext(ctx) != second {
		t.Error("FromContext returned the first logger, want the overwriting one")
	}
}

func TestNew_Redaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		attr   slog.Attr
		secret string
	}{
		{name: "authorization field", attr: slog.String("authorization", "Bearer supersecret-token"), secret: "supersecret-token"},
		{name: "password field", attr: slog.String("password", "hunter2"), secret: "hunter2"},
		{name: "api key prefix", attr: slog.String("api_key_v2", "k-123"), secret: "k-123"},
		{name: "customer field", attr: slog.String("customer", "Jane Doe"), secret: "Jane Doe"},
		{name: "tracking code field", attr: slog.String("tracking_code", "1Z999AA1"), secret: "1Z999AA1"},
		{name: "bearer value", attr: slog.String("raw_header", "Bearer eyJhbGciOiJSUzI1NiJ9"), secret: "eyJhbGciOiJSUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logging.New("info", "json", &buf).Info("event", tt.attr)

			out := buf.String()
			if strings.Contains(out, tt.secret) {
				t.Errorf("output = %q, want %q redacted", out, tt.secret)
			}
			if !strings.Contains(out, "[REDACTED]") {
				t.Errorf("output = %q, missing [REDACTED] marker", out)
			}
		})
	}
}

func TestNew_DoesNotRedactOrderIdentifiers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logging.New("info", "json", &buf).Info("command dispatched",
		slog.String("order_id", "o-123"),
		slog.String("command", "order.cancelOrder"),
	)

	out := buf.String()
	for _, want := range []string{"o-123", "order.cancelOrder"} {
		if !strings.Contains(out, want) {
			t.Errorf("output = %q, missing non-sensitive value %q", out, want)
		}
	}
}
