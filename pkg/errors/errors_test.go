package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("row not found")
	err := Wrap(CodeNotFound, cause, "ticket lookup")

	if err.Code() != CodeNotFound {
		t.Fatalf("unexpected code: %s", err.Code())
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := New(CodeInsufficientStock, "balance 2, requested 3")
	wrapped := fmt.Errorf("consume part: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeInsufficientStock {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestHasCode(t *testing.T) {
	err := New(CodeInvalidTransition, "shipped_out is terminal")
	if !HasCode(err, CodeInvalidTransition) {
		t.Fatal("expected HasCode to match")
	}
	if HasCode(err, CodeConflict) {
		t.Fatal("expected HasCode mismatch for other code")
	}
	if HasCode(nil, CodeConflict) {
		t.Fatal("nil error should never match")
	}
}

func TestMetadataForDomainCodes(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeInvalidTransition, http.StatusUnprocessableEntity},
		{CodeInsufficientStock, http.StatusConflict},
		{CodeConcurrentModification, http.StatusConflict},
		{CodeDuplicateDocument, http.StatusConflict},
		{CodeNoLineItems, http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "quantity must be positive").WithDetails(map[string]any{"field": "quantity"})
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatal("expected map details")
	}
	if details["field"] != "quantity" {
		t.Fatalf("unexpected details: %v", details)
	}
}
