package service

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dasmlab/linguaflow/pkg/history"
	"github.com/dasmlab/linguaflow/pkg/session"
	"github.com/dasmlab/linguaflow/pkg/settings"
	"github.com/dasmlab/linguaflow/pkg/translate"
	"github.com/dasmlab/linguaflow/pkg/voice"
)

// Code classifies an error for the transports.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case session.IsValidation(err), errors.Is(err, settings.ErrInvalidValue):
		return codes.InvalidArgument
	case errors.Is(err, ErrSessionNotFound):
		return codes.NotFound
	case errors.Is(err, session.ErrTranslationInFlight), errors.Is(err, session.ErrClosed):
		return codes.FailedPrecondition
	case errors.Is(err, translate.ErrTranslationFailure):
		return codes.Unavailable
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, history.ErrClosed):
		return codes.Unavailable
	case errors.Is(err, voice.ErrUnavailable):
		return codes.Unimplemented
	default:
		return codes.Internal
	}
}

// toStatus converts err to a gRPC status error. Validation messages pass
// through unchanged so clients can show them.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(Code(err), err.Error())
}
