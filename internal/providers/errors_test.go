package providers

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		kind ErrorKind
		want string
	}{
		{KindService, "service"},
		{KindConfiguration, "configuration"},
		{KindValidation, "validation"},
		{KindIO, "io"},
		{KindAuthentication, "authentication"},
		{KindUnsupportedFormat, "unsupported_format"},
		{KindCanceled, "canceled"},
	}
	for _, tc := range cases {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("kind %d String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	err := NewError(KindValidation, "bad extension: %s", ".txt")
	if KindOf(err) != KindValidation {
		t.Errorf("KindOf = %v, want validation", KindOf(err))
	}

	// Kind survives wrapping.
	wrapped := fmt.Errorf("processing file: %w", err)
	if KindOf(wrapped) != KindValidation {
		t.Errorf("KindOf(wrapped) = %v, want validation", KindOf(wrapped))
	}

	// Untyped errors classify as service.
	if KindOf(errors.New("boom")) != KindService {
		t.Error("untyped error should classify as service")
	}
}

func TestWrapErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(KindService, cause, "request failed")

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be matchable")
	}
	if !IsKind(err, KindService) {
		t.Error("expected service kind")
	}
	if IsKind(err, KindIO) {
		t.Error("did not expect io kind")
	}
}

func TestErrorMessage(t *testing.T) {
	withStatus := &Error{Kind: KindAuthentication, Message: "invalid key", Status: 401}
	if got := withStatus.Error(); got != "authentication error (status 401): invalid key" {
		t.Errorf("unexpected message: %q", got)
	}

	noStatus := NewError(KindIO, "disk full")
	if got := noStatus.Error(); got != "io error: disk full" {
		t.Errorf("unexpected message: %q", got)
	}
}
