// Package fault defines the two-kind failure taxonomy surfaced by actions.
// Every failure that crosses an action boundary is either retryable (the
// caller may re-invoke with the same inputs) or fatal (the caller must not
// blindly retry).
package fault

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Discriminator codes reported by the directory service.
const (
	CodeNotFound           = "ResourceNotFoundException"
	CodeThrottling         = "ThrottlingException"
	CodeServiceUnavailable = "ServiceUnavailableException"
)

// Error is a classified failure. Retryable failures are transient service
// conditions; everything else requires operator intervention or input
// correction.
type Error struct {
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	return e.Message
}

// Retryable builds a classified error safe to retry with the same inputs.
func Retryable(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Retryable: true}
}

// Fatal builds a classified error that must not be automatically retried.
func Fatal(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Retryable: false}
}

// FromError reports whether err already carries a classification.
func FromError(err error) (*Error, bool) {
	var classified *Error
	if errors.As(err, &classified) {
		return classified, true
	}

	return nil, false
}

// IsNotFound reports whether err carries the directory's not-found
// discriminator. Callers decide what not-found means in context; it is never
// mapped by Classify.
func IsNotFound(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == CodeNotFound
}

// Classify maps a raw directory-service failure to the two-kind taxonomy.
// Throttling and service-unavailable discriminators become retryable; any
// other failure is fatal, prefixed with opContext. First match wins.
func Classify(err error, opContext string) *Error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case CodeThrottling, CodeServiceUnavailable:
			return Retryable("Service temporarily unavailable: %s", apiErr.ErrorMessage())
		}
	}

	return Fatal("%s: %s", opContext, err.Error())
}
