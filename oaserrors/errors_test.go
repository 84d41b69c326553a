package oaserrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := &ParseError{
			Path:    "schemas/pet.yaml",
			Line:    42,
			Column:  10,
			Message: "invalid syntax",
			Cause:   cause,
		}

		msg := err.Error()
		if msg != "parse error in schemas/pet.yaml at line 42, column 10: invalid syntax: underlying error" {
			t.Errorf("unexpected error message: %s", msg)
		}
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &ParseError{}
		if err.Error() != "parse error" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is and Unwrap", func(t *testing.T) {
		cause := errors.New("underlying")
		err := &ParseError{Cause: cause}
		if !errors.Is(err, ErrParse) {
			t.Error("expected errors.Is(err, ErrParse)")
		}
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is(err, cause)")
		}
		if errors.Is(err, ErrReference) {
			t.Error("ParseError should not match ErrReference")
		}
	})
}

func TestReferenceError(t *testing.T) {
	t.Run("dangling message includes origin", func(t *testing.T) {
		err := &ReferenceError{
			Ref:        "./missing.yaml#/Pet",
			File:       "openapi.yaml",
			Origin:     "/paths/~1pets/get",
			IsDangling: true,
		}
		want := "dangling reference: ./missing.yaml#/Pet (in openapi.yaml at #/paths/~1pets/get)"
		if err.Error() != want {
			t.Errorf("got %q, want %q", err.Error(), want)
		}
	})

	t.Run("circular message", func(t *testing.T) {
		err := &ReferenceError{Ref: "#/x", IsCircular: true, Message: "cannot inline"}
		if err.Error() != "circular reference: #/x: cannot inline" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("sentinels follow flags", func(t *testing.T) {
		dangling := &ReferenceError{IsDangling: true}
		circular := &ReferenceError{IsCircular: true}

		if !errors.Is(dangling, ErrReference) || !errors.Is(dangling, ErrDanglingReference) {
			t.Error("dangling should match ErrReference and ErrDanglingReference")
		}
		if errors.Is(dangling, ErrCircularReference) {
			t.Error("dangling should not match ErrCircularReference")
		}
		if !errors.Is(circular, ErrCircularReference) {
			t.Error("circular should match ErrCircularReference")
		}
		if errors.Is(circular, ErrDanglingReference) {
			t.Error("circular should not match ErrDanglingReference")
		}
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("bundle: %w", &ReferenceError{Ref: "a.yaml", IsDangling: true})
		var refErr *ReferenceError
		if !errors.As(wrapped, &refErr) {
			t.Fatal("expected errors.As to find ReferenceError")
		}
		if refErr.Ref != "a.yaml" {
			t.Errorf("unexpected ref %q", refErr.Ref)
		}
	})
}

func TestRootError(t *testing.T) {
	t.Run("multiple roots uses the fixed reason", func(t *testing.T) {
		err := &RootError{Candidates: []string{"a.yaml", "b.yaml"}, Multiple: true}
		if err.Error() != "More than one root file not supported." {
			t.Errorf("unexpected error message: %s", err.Error())
		}
		if !errors.Is(err, ErrMultipleRoots) {
			t.Error("expected ErrMultipleRoots")
		}
		if errors.Is(err, ErrAmbiguousRoot) {
			t.Error("should not match ErrAmbiguousRoot")
		}
		if err.Detail() != "More than one root file not supported. Candidates: a.yaml, b.yaml" {
			t.Errorf("unexpected detail: %s", err.Detail())
		}
	})

	t.Run("ambiguous root", func(t *testing.T) {
		err := &RootError{}
		if !errors.Is(err, ErrAmbiguousRoot) {
			t.Error("expected ErrAmbiguousRoot")
		}
		if err.Detail() != err.Error() {
			t.Error("detail without candidates should equal the message")
		}
	})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Path: "openapi.yaml", Field: "paths", Message: "Specification must contain Paths Object for the available operational paths"}
	if err.Error() != "Specification must contain Paths Object for the available operational paths" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("expected ErrValidation")
	}

	bare := &ValidationError{Field: "info"}
	if bare.Error() != "validation error for info" {
		t.Errorf("unexpected error message: %s", bare.Error())
	}
}

func TestResourceLimitError(t *testing.T) {
	err := &ResourceLimitError{ResourceType: "file_count", Limit: 10, Actual: 12}
	if err.Error() != "resource limit exceeded: file_count (limit: 10, actual: 12)" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrResourceLimit) {
		t.Error("expected ErrResourceLimit")
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("boom")
	err := &ConfigError{Option: "root-hint", Value: "x.yaml", Message: "not in file set", Cause: cause}
	want := "configuration error for root-hint (value: x.yaml): not in file set: boom"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrConfig) || !errors.Is(err, cause) {
		t.Error("expected ErrConfig and cause to match")
	}
}
