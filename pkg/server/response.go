package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"google.golang.org/grpc/codes"

	"github.com/dasmlab/linguaflow/pkg/service"
	"github.com/dasmlab/linguaflow/pkg/session"
	"github.com/dasmlab/linguaflow/pkg/translate"
)

// ErrResponse is the JSON body of every failed request.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// ErrInvalidRequest reports a body or parameter that could not be parsed.
func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrFrom maps a domain error to its HTTP response.
func ErrFrom(err error) render.Renderer {
	resp := &ErrResponse{
		Err:            err,
		HTTPStatusCode: httpStatus(err),
		ErrorText:      err.Error(),
	}
	resp.StatusText = http.StatusText(resp.HTTPStatusCode)

	var ve *session.ValidationError
	if errors.As(err, &ve) {
		resp.Reason = string(ve.Reason)
	}
	if errors.Is(err, translate.ErrTranslationFailure) {
		// Backend details stay in the logs.
		resp.ErrorText = "Translation failed. Please try again."
	}
	return resp
}

// ErrNotFound is returned for unknown resources.
var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}

func httpStatus(err error) int {
	if errors.Is(err, translate.ErrTranslationFailure) {
		return http.StatusBadGateway
	}
	switch service.Code(err) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Canceled, codes.DeadlineExceeded:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
