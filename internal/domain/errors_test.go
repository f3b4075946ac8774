package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", ValidationError{Field: "nameRequestNumber"}, http.StatusBadRequest},
		{"not found", NotFoundError{Field: "nameRequestNumber", Key: "XX0000000"}, http.StatusNotFound},
		{"busy", KeyBusyError{Field: "nameRequestNumber", Key: "NR1"}, http.StatusConflict},
		{"index", IndexUpdateError{Core: "names", StatusCode: http.StatusBadRequest, Message: "bad doc"}, http.StatusBadRequest},
		{"index without status", IndexUpdateError{Core: "names"}, http.StatusInternalServerError},
		{"wrapped not found", pkgerrors.Wrap(NotFoundError{Field: "f", Key: "k"}, "lookup"), http.StatusNotFound},
		{"wrapped index", fmt.Errorf("sync: %w", IndexUpdateError{StatusCode: http.StatusBadGateway}), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Fatalf("expected %d got %d", tt.want, got)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	err := fmt.Errorf("sync: %w", IndexUpdateError{Core: "names", StatusCode: 400, Message: "unknown field 'foo'"})
	if got := Message(err); got != "unknown field 'foo'" {
		t.Fatalf("unexpected message %q", got)
	}

	if got := Message(NotFoundError{Field: "nameRequestNumber", Key: "XX0000000"}); got != `Unknown "nameRequestNumber" of "XX0000000"` {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Message(ValidationError{Field: "nameRequestNumber"}); got != `Required parameter "nameRequestNumber" not defined` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestErrorsIs(t *testing.T) {
	if !errors.Is(NotFoundError{Field: "a", Key: "b"}, ErrNotFound) {
		t.Errorf("expected not found to match sentinel")
	}
	if !errors.Is(&KeyBusyError{}, ErrKeyBusy) {
		t.Errorf("expected busy pointer to match sentinel")
	}
	if errors.Is(ValidationError{}, ErrNotFound) {
		t.Errorf("validation must not match not found")
	}
	if ErrNotFound.Error() != "not found" {
		t.Errorf("unexpected sentinel message %q", ErrNotFound.Error())
	}
}
