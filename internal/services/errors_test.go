package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"prodscan/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "resolver", "fetch master", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"resolver", "fetch master", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestFailureMessage(t *testing.T) {
	stopped := services.Wrap(services.ErrCancelled, "resolver", "fetch release", "", nil)
	if got := services.FailureMessage(stopped); got != services.StoppedDuringMessage {
		t.Fatalf("expected stop message, got %q", got)
	}
	if got := services.FailureMessage(fmt.Errorf("wrapped: %w", context.Canceled)); got != services.StoppedDuringMessage {
		t.Fatalf("expected stop message for context cancel, got %q", got)
	}
	if got := services.FailureMessage(errors.New("404 not found")); got != "404 not found" {
		t.Fatalf("unexpected message %q", got)
	}
}
