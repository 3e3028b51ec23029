package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("leads-sheet1", "timestamp.column", "required mapping missing")

	expected := "configuration error for source leads-sheet1 (field timestamp.column): required mapping missing"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	if !errors.Is(err, ErrMissingConfig) {
		t.Error("ConfigError should match ErrMissingConfig")
	}

	if !IsConfigError(err) {
		t.Error("IsConfigError should return true for ConfigError")
	}
	if IsConfigError(errors.New("plain")) {
		t.Error("IsConfigError should return false for plain error")
	}
}

func TestFetchErrorStatusClassification(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		wantAuth    bool
		wantUnavail bool
	}{
		{"unauthorized", 401, true, false},
		{"forbidden", 403, true, false},
		{"server error", 500, false, true},
		{"bad gateway", 502, false, true},
		{"not found", 404, false, false},
		{"no status", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFetchError("webinar-attendance", tt.statusCode, "boom")
			if got := IsAuthFailed(err); got != tt.wantAuth {
				t.Errorf("IsAuthFailed = %v, want %v", got, tt.wantAuth)
			}
			if got := IsSourceUnavailable(err); got != tt.wantUnavail {
				t.Errorf("IsSourceUnavailable = %v, want %v", got, tt.wantUnavail)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("phone_number", "12345", "not a 10-digit phone")

	if !IsValidationError(err) {
		t.Error("ValidationError should match ErrInvalidInput")
	}

	expected := "validation failed for field phone_number: not a 10-digit phone"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestWriteErrorUnwrap(t *testing.T) {
	cause := errors.New("value out of range")
	err := NewWriteError("tofu_leads", "919876543210", cause)

	if !errors.Is(err, cause) {
		t.Error("WriteError should unwrap to its cause")
	}
	if IsDuplicate(err) {
		t.Error("a non-conflict WriteError must not read as a duplicate")
	}
}

func TestDuplicateSentinel(t *testing.T) {
	wrapped := fmt.Errorf("insert batch 3: %w", ErrDuplicate)
	if !IsDuplicate(wrapped) {
		t.Error("IsDuplicate should see through wrapping")
	}
}

func TestWrapHelpersNilSafety(t *testing.T) {
	if WrapFetch("s", "http://example.invalid", nil) != nil {
		t.Error("WrapFetch(nil) should return nil")
	}
	if WrapWrite("t", nil) != nil {
		t.Error("WrapWrite(nil) should return nil")
	}
	if WrapParse("yaml", "sources.yaml", nil) != nil {
		t.Error("WrapParse(nil) should return nil")
	}
	if WrapValidation("f", nil) != nil {
		t.Error("WrapValidation(nil) should return nil")
	}
	if WrapIO("read", "p", nil) != nil {
		t.Error("WrapIO(nil) should return nil")
	}
}
