package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDuplicateItem       = errors.New("duplicate item in ranked list")
	ErrTypeMismatch        = errors.New("unsupported ranking input type")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrInsufficientOverlap = errors.New("insufficient overlap between lists")
	ErrSnapshotNotFound    = errors.New("ranking snapshot not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternal            = errors.New("internal error")
	ErrTimeout             = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientOverlap):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrDuplicateItem),
		errors.Is(err, ErrTypeMismatch),
		errors.Is(err, ErrInvalidParameter),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}

}
