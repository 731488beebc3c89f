package apiclient_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/hashicorp/go-retryablehttp"
)

const maxResponseBytes = 4 << 20

// Config points the collaborator clients at a running listing-service API.
type Config struct {
	BaseURL  string // e.g. http://localhost:8080/api/v1
	Timeout  time.Duration
	RetryMax int
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []domain.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, strings.Join(names, ", "))
}

// Unwrap exposes the domain error a status code stands for.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrTokenInvalid
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrListingNotFound
	}
	if len(e.Fields) > 0 {
		return &domain.ValidationError{Fields: e.Fields}
	}
	return nil
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

type client struct {
	baseURL string
	http    *retryablehttp.Client
}

func newClient(cfg Config) (*client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api client: base url cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = cfg.RetryMax
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), http: rc}, nil
}

// do sends the request and decodes a 2xx JSON body into out.
func (c *client) do(ctx context.Context, req *retryablehttp.Request, cred port.Credential, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if cred != "" {
		req.Header.Set("Authorization", "Bearer "+string(cred))
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Fields = eb.Fields
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
