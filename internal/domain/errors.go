package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Field string
	Key   string
}

func (e NotFoundError) Error() string {
	if e.Field == "" {
		return "not found"
	}
	return fmt.Sprintf("Unknown %q of %q", e.Field, e.Key)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError reports a request the caller has to fix before resending.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("Required parameter %q not defined", e.Field)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

var ErrValidation = ValidationError{}

// IndexUpdateError is an index core refusing or failing a document write.
// StatusCode and Message come from the core and are surfaced verbatim.
type IndexUpdateError struct {
	Core       string
	DocumentID string
	StatusCode int
	Message    string
}

func (e IndexUpdateError) Error() string {
	return fmt.Sprintf("update of core %s failed with %d: %s", e.Core, e.StatusCode, e.Message)
}

func (e IndexUpdateError) Is(target error) bool {
	_, ok := target.(IndexUpdateError)
	if ok {
		return true
	}
	_, ok = target.(*IndexUpdateError)
	return ok
}

var ErrIndexUpdate = IndexUpdateError{}

// KeyBusyError is returned by the dispatcher when another sync of the same
// key is already in flight.
type KeyBusyError struct {
	Field string
	Key   string
}

func (e KeyBusyError) Error() string {
	return fmt.Sprintf("Sync of %q of %q already in progress", e.Field, e.Key)
}

func (e KeyBusyError) Is(target error) bool {
	_, ok := target.(KeyBusyError)
	if ok {
		return true
	}
	_, ok = target.(*KeyBusyError)
	return ok
}

var ErrKeyBusy = KeyBusyError{}

// StatusCode maps a sync outcome to the status reported to the caller.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var indexErr IndexUpdateError
	if errors.As(err, &indexErr) {
		if indexErr.StatusCode == 0 {
			return http.StatusInternalServerError
		}
		return indexErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrKeyBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the human readable text reported to the caller. Index core
// failures surface the core's own message.
func Message(err error) string {
	var indexErr IndexUpdateError
	if errors.As(err, &indexErr) {
		return indexErr.Message
	}
	return err.Error()
}
