package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error kinds returned by the domain services. Handlers map them to HTTP
// statuses; see api.statusFor.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnauthenticated  = errors.New("authentication credentials were not provided")
	ErrForbidden        = errors.New("you do not have permission to perform this action")
)

// Error carries a kind and a human readable detail message.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

func conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

func invalid(format string, args ...interface{}) error {
	return newError(ErrInvalidOperation, format, args...)
}

func forbidden() error {
	return &Error{Kind: ErrForbidden}
}

// Detail returns the message to show to the client for err.
func Detail(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Error()
	}
	return err.Error()
}

// isUniqueViolation reports whether err came from a unique constraint.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// lookupError converts gorm.ErrRecordNotFound into a NotFound error.
func lookupError(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(format, args...)
	}
	return err
}
