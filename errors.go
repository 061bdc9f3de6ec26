package krishimitra

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponder lets typed errors write their own HTTP response, so
// handlers can surface "try again" vs "not logged in" vs "gone" without
// switching on error strings.
type ErrorResponder interface {
	RespondError(w http.ResponseWriter, r *http.Request) bool
}

// NotAuthenticatedError rejects an operation that requires a caller
// identity, before any write happens.
type NotAuthenticatedError struct{}

func NotAuthenticated() *NotAuthenticatedError {
	return &NotAuthenticatedError{}
}

func (e *NotAuthenticatedError) Error() string {
	return "NotAuthenticated: no caller identity"
}

func (e *NotAuthenticatedError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	return true
}

// NotFoundError signals that a referenced record does not exist. No partial
// state is left behind when it is returned.
type NotFoundError struct {
	kind string
	id   int64
}

func NotFound(kind string, id int64) *NotFoundError {
	return &NotFoundError{kind: kind, id: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("NotFound: %v %v", e.kind, e.id)
}

func (e *NotFoundError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	return true
}

// ConflictError signals that a concurrent write invalidated the optimistic
// check on the ledger row. The whole operation is safe to retry: re-read,
// recompute, re-submit.
type ConflictError struct {
	op string
}

func Conflict(op string) *ConflictError {
	return &ConflictError{op: op}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ConflictRetryable: %v", e.op)
}

func (e *ConflictError) Retryable() bool { return true }

func (e *ConflictError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
	return true
}

// UnavailableError signals that the backing store could not be reached. The
// operation had no observable effect and is safe to retry.
type UnavailableError struct {
	err error
}

func Unavailable(err error) *UnavailableError {
	return &UnavailableError{err: err}
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("StorageUnavailable: %v", e.err)
}

func (e *UnavailableError) Unwrap() error { return e.err }

func (e *UnavailableError) Retryable() bool { return true }

func (e *UnavailableError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	return true
}

// BadRequestError responds with bad request status code.
type BadRequestError struct {
	err error
}

func BadRequest(err error) *BadRequestError {
	return &BadRequestError{err: err}
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("BadRequestError: %v", e.err)
}

func (e *BadRequestError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
	return true
}

// retryable is implemented by errors that callers may retry wholesale.
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether the whole operation can be re-submitted
// after this error.
func IsRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
