package common

import (
	"errors"
	"testing"
)

func TestAppError(t *testing.T) {
	err := NewAppError("CONFIG_ERROR", "TELEGRAM_BOT_TOKEN is required", ErrInvalidInput)

	if got := err.Error(); got != "CONFIG_ERROR: TELEGRAM_BOT_TOKEN is required: invalid input" {
		t.Fatalf("error string = %q", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatal("cause not unwrapped")
	}

	var app *AppError
	if !errors.As(err, &app) || app.Code != "CONFIG_ERROR" {
		t.Fatalf("errors.As failed: %+v", app)
	}
}

func TestAppErrorWithoutCause(t *testing.T) {
	err := NewAppError("OCR_ERROR", "decode failed", nil)
	if got := err.Error(); got != "OCR_ERROR: decode failed" {
		t.Fatalf("error string = %q", got)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Fatal("wrapping nil should stay nil")
	}

	wrapped := WrapError(ErrUnavailable, "extract fields")
	if !errors.Is(wrapped, ErrUnavailable) {
		t.Fatal("wrapped cause lost")
	}
	if got := wrapped.Error(); got != "extract fields: collaborator unavailable" {
		t.Fatalf("error string = %q", got)
	}
}
