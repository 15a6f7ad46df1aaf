package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("connection refused")
	err := Wrap(ErrExternalTool, "tmdb", "search movie", "query failed", base)

	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("error %v should match ErrExternalTool", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("error %v should preserve the wrapped cause", err)
	}
	want := "external tool error: tmdb: search movie: query failed: connection refused"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrValidation, "scanner", "", "empty file name", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error %v should match ErrValidation", err)
	}
	if err.Error() != "validation error: scanner: empty file name" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("error %v should default to ErrTransient", err)
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("message = %q", err.Error())
	}
}
