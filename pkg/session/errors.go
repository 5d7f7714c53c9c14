package session

import (
	"errors"
	"fmt"
)

// ErrTranslationInFlight is returned when a translation is requested, or the
// languages swapped, while another translation is running.
var ErrTranslationInFlight = errors.New("a translation is already in progress")

// ErrNoClient is returned by New without a translation client.
var ErrNoClient = errors.New("translation client is required")

// ErrClosed is returned by a session after Close.
var ErrClosed = errors.New("session is closed")

// Reason classifies a validation failure.
type Reason string

const (
	ReasonEmptyText       Reason = "empty_text"
	ReasonSameLanguage    Reason = "same_language"
	ReasonUnknownLanguage Reason = "unknown_language"
	ReasonTooLong         Reason = "too_long"
)

// ValidationError is a request the session refused before reaching the
// translation backend. Message is fit to show to the user.
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func emptyTextError() *ValidationError {
	return &ValidationError{Reason: ReasonEmptyText, Message: "Please enter text to translate"}
}

func sameLanguageError() *ValidationError {
	return &ValidationError{Reason: ReasonSameLanguage, Message: "Please select different source and target languages"}
}

func unknownLanguageError(code string) *ValidationError {
	return &ValidationError{Reason: ReasonUnknownLanguage, Message: fmt.Sprintf("Unsupported language: %q", code)}
}

func tooLongError(max int) *ValidationError {
	return &ValidationError{Reason: ReasonTooLong, Message: fmt.Sprintf("Text exceeds maximum length of %d characters", max)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
