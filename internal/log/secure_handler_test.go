package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandlerRedaction tests that credential attributes never
// appear in log output.
func TestSecureHandlerRedaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		key    string
		value  string
		redact bool
	}{
		{"authorization key", "authorization", "Bearer abc123", true},
		{"token key", "token", "abc123", true},
		{"api key variants", "api_key", "abc123", true},
		{"keyword inside key", "extraction_token", "abc123", true},
		{"bearer value under neutral key", "header", "Bearer abc123", true},
		{"jwt value under neutral key", "value", "eyJhbGci.eyJzdWIi.sig", true},
		{"plain url passes", "url", "https://docs.example.com/", false},
		{"plain count passes", "pages", "42", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
			logger.Info("test", tt.key, tt.value)

			out := buf.String()
			if tt.redact {
				if strings.Contains(out, tt.value) {
					t.Errorf("sensitive value %q leaked into log: %s", tt.value, out)
				}
				if !strings.Contains(out, MaskValue) {
					t.Errorf("expected mask in output: %s", out)
				}
			} else if !strings.Contains(out, tt.value) {
				t.Errorf("benign value %q was redacted: %s", tt.value, out)
			}
		})
	}
}

// TestSecureHandlerGroups tests sanitization inside attribute groups.
func TestSecureHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
	logger.Info("test", slog.Group("request",
		slog.String("url", "https://docs.example.com/"),
		slog.String("authorization", "Bearer abc123"),
	))

	out := buf.String()
	if strings.Contains(out, "abc123") {
		t.Errorf("group attribute leaked credential: %s", out)
	}
	if !strings.Contains(out, "https://docs.example.com/") {
		t.Errorf("benign group attribute was lost: %s", out)
	}
}

// TestSecureHandlerWithAttrs tests pre-attached attribute sanitization.
func TestSecureHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil))).
		With("token", "abc123")
	logger.Info("test")

	if strings.Contains(buf.String(), "abc123") {
		t.Errorf("pre-attached credential leaked: %s", buf.String())
	}
}

// TestNewSecureLogger tests level selection.
func TestNewSecureLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)
		logger.Debug("hidden")
		logger.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("debug record should be suppressed without verbose")
		}
		if !strings.Contains(out, "shown") {
			t.Error("warn record should be emitted")
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)
		logger.Debug("visible")

		if !strings.Contains(buf.String(), "visible") {
			t.Error("debug record should be emitted with verbose")
		}
	})
}
