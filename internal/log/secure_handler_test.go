package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestRedact tests the pure redaction filter.
func TestRedact(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		input      string
		mustHide   []string
		mustRemain []string
	}{
		{
			name:       "email address",
			input:      "contact us at leak@evil.com today",
			mustHide:   []string{"leak@evil.com"},
			mustRemain: []string{"contact us at", "today"},
		},
		{
			name:     "password assignment",
			input:    `found password: hunter2 in dump`,
			mustHide: []string{"hunter2"},
		},
		{
			name:     "password equals form",
			input:    `pwd="s3cretvalue"`,
			mustHide: []string{"s3cretvalue"},
		},
		{
			name:     "long token",
			input:    "key abcdef0123456789abcdef0123456789 seen",
			mustHide: []string{"abcdef0123456789abcdef0123456789"},
		},
		{
			name:     "credit card shape",
			input:    "card 4111-1111-1111-1111 leaked",
			mustHide: []string{"4111-1111-1111-1111"},
		},
		{
			name:     "ssn shape",
			input:    "ssn 078-05-1120 found",
			mustHide: []string{"078-05-1120"},
		},
		{
			name:     "bearer token",
			input:    "header Bearer abc123def456 rejected",
			mustHide: []string{"abc123def456"},
		},
		{
			name:       "clean text unchanged",
			input:      "scanned 3 sources without incident",
			mustRemain: []string{"scanned 3 sources without incident"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Redact(tc.input)
			for _, hidden := range tc.mustHide {
				if strings.Contains(got, hidden) {
					t.Errorf("redacted output %q still contains %q", got, hidden)
				}
			}
			for _, kept := range tc.mustRemain {
				if !strings.Contains(got, kept) {
					t.Errorf("redacted output %q lost %q", got, kept)
				}
			}
		})
	}
}

// TestRedactIsIdempotent tests that redacting twice equals redacting once.
func TestRedactIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"password: hunter2 and leak@evil.com",
		"clean line",
		"Bearer abcdefabcdefabcdefabcdefabcdefab",
		"",
	}

	for _, input := range inputs {
		once := Redact(input)
		if twice := Redact(once); twice != once {
			t.Errorf("Redact not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

// TestSecureHandlerMasksSensitiveKeys tests whole-value masking by key name.
func TestSecureHandlerMasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		key   string
		value string
	}{
		{"password", "hunter2"},
		{"api_key", "short"},
		{"context", "raw leak excerpt with secrets"},
		{"entities", "email: a@b.example"},
		{"smtp_password", "mailpass"},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))

			logger.Info("test", tc.key, tc.value)

			out := buf.String()
			if strings.Contains(out, tc.value) {
				t.Errorf("output %q contains sensitive value %q", out, tc.value)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("output %q missing mask value", out)
			}
		})
	}
}

// TestSecureHandlerRedactsMessage tests that the log message itself is scrubbed.
func TestSecureHandlerRedactsMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))

	logger.Warn("leak at soc@example.com detected")

	out := buf.String()
	if strings.Contains(out, "soc@example.com") {
		t.Errorf("output %q contains email address", out)
	}
	if !strings.Contains(out, "[EMAIL_REDACTED]") {
		t.Errorf("output %q missing email redaction marker", out)
	}
}

// TestSecureHandlerPreservesBenignAttrs tests that harmless attributes pass through.
func TestSecureHandlerPreservesBenignAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("cycle complete", "source", "http://example.onion", "findings", 3)

	out := buf.String()
	if !strings.Contains(out, "http://example.onion") {
		t.Errorf("output %q lost benign source attribute", out)
	}
	if !strings.Contains(out, "findings=3") {
		t.Errorf("output %q lost numeric attribute", out)
	}
}

// TestSecureHandlerRedactsGroups tests recursive group handling.
func TestSecureHandlerRedactsGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("grouped",
		slog.Group("alert",
			slog.String("password", "hunter2"),
			slog.String("destination_count", "1"),
		),
	)

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("output %q contains grouped sensitive value", out)
	}
}

// TestNewSecureLoggerLevels tests verbose level switching.
func TestNewSecureLoggerLevels(t *testing.T) {
	t.Parallel()

	t.Run("quiet logger drops info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)
		logger.Info("should not appear")
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("verbose logger keeps debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)
		logger.Debug("debug line")
		if !strings.Contains(buf.String(), "debug line") {
			t.Errorf("expected debug output, got %q", buf.String())
		}
	})
}

// TestNewSecureJSONLogger tests JSON output with redaction.
func TestNewSecureJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureJSONLogger(&buf, true)

	logger.Warn("dispatch failed", "token", "abc")

	out := buf.String()
	if !strings.Contains(out, `"msg":"dispatch failed"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if strings.Contains(out, `"abc"`) {
		t.Errorf("output %q contains sensitive token", out)
	}
}
