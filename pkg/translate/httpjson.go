package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// backendError is a non-2xx answer from an HTTP translation backend.
type backendError struct {
	Status int
	Body   string
}

func (e *backendError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// jsonEndpoint issues JSON requests against one backend base URL.
type jsonEndpoint struct {
	name       string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func newJSONEndpoint(name, baseURL string, timeout time.Duration, logger *logrus.Logger) jsonEndpoint {
	if logger == nil {
		logger = logrus.New()
	}
	return jsonEndpoint{
		name:       name,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// do sends in (nil for GET) to path and decodes the 200 response into out.
func (e jsonEndpoint) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = buf
	}

	url := e.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"backend": e.name,
			"url":     url,
		}).Error("Backend request failed")
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	e.logger.WithFields(logrus.Fields{
		"backend":     e.name,
		"path":        path,
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Backend request completed")

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &backendError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
