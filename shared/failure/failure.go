// Package failure maps domain errors onto HTTP status codes.
package failure

import (
	"errors"
	"net/http"
)

// Failure is an error the client is allowed to see, paired with the HTTP
// status it should be reported with.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var ForbiddenError = New(http.StatusForbidden, "You don't have the required permissions")
var ResourceRestrictedError = New(http.StatusForbidden, "You don't have permission to access this resource")

func New(code int, message string) *Failure {
	return &Failure{
		Code:    code,
		Message: message,
	}
}

func (e *Failure) Error() string {
	return e.Message
}

// Is treats two failures with the same code and message as equal, so sentinel
// values survive being rebuilt.
func (e *Failure) Is(target error) bool {
	var other *Failure
	if !errors.As(target, &other) {
		return false
	}

	return e.Code == other.Code && e.Message == other.Message
}

// BadRequest wraps err as a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return New(http.StatusBadRequest, err.Error())
}

func BadRequestFromString(msg string) error {
	return New(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) error {
	return New(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) error {
	return New(http.StatusForbidden, msg)
}

// NotFound reports a missing entity by name.
func NotFound(entityName string) error {
	return New(http.StatusNotFound, entityName)
}

func Conflict(message string) error {
	return New(http.StatusConflict, message)
}

// GetCode returns the status carried by err, or 500 for anything that is not
// a Failure.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// IsCode reports whether err carries the given status.
func IsCode(err error, code int) bool {
	return err != nil && GetCode(err) == code
}
