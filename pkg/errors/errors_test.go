package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCode(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(CodeRemote)
	if meta.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("unexpected status for remote errors: %d", meta.HTTPStatus)
	}
	if !meta.Retryable {
		t.Fatal("remote errors should be retryable")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("boom")
	err := Wrap(CodeRemote, cause, "fetch cart")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be unwrappable")
	}
	if err.Code() != CodeRemote {
		t.Fatalf("unexpected code: %s", err.Code())
	}
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeStorage, nil, "write guest cart")
	if err.Unwrap() != nil {
		t.Fatal("expected no cause")
	}
	if err.Message() != "write guest cart" {
		t.Fatalf("unexpected message: %s", err.Message())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	t.Parallel()

	inner := New(CodeEnrichment, "product fetch failed")
	wrapped := fmt.Errorf("context: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeEnrichment {
		t.Fatalf("unexpected code: %s", typed.Code())
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}
