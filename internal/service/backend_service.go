package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fadilmartias/ats-portal/internal/config"
	"github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// TokenSource supplies the credential attached to protected requests.
type TokenSource interface {
	Token() string
}

type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
)

// APIError is returned for every failed backend call. Message is safe to
// show to the user as a page-local error.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	// FromServer is set when Message was read from the response body.
	FromServer bool
	Err        error
}

func (e *APIError) Error() string {
	if e.Kind == KindTransport && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status behind err, or 0 when err is not a
// status failure.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind == KindStatus {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the text the backend sent with err, or fallback when it
// sent none.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.FromServer {
			return apiErr.Message
		}
		return fallback
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

type Backend struct {
	client *resty.Client
	tokens TokenSource
	log    *zap.Logger
}

func NewBackend(cfg *config.BackendConfig, log *zap.Logger) *Backend {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &Backend{client: client, log: logger.OrNop(log)}
}

// WithTokens returns a Backend sharing the same HTTP client that authorizes
// requests with ts.
func (b *Backend) WithTokens(ts TokenSource) *Backend {
	return &Backend{client: b.client, tokens: ts, log: b.log}
}

// Owns reports whether ref points at the backend host. Only such references
// may be followed with the session token attached.
func (b *Backend) Owns(ref string) bool {
	base, err := url.Parse(b.client.BaseURL)
	if err != nil {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == base.Scheme && u.Host == base.Host
}

func (b *Backend) request(ctx context.Context, auth bool) *resty.Request {
	r := b.client.R().SetContext(ctx)
	if auth && b.tokens != nil {
		if token := b.tokens.Token(); token != "" {
			r.SetHeader("Authorization", "Token "+token)
		}
	}
	return r
}

func (b *Backend) execute(r *resty.Request, method, endpoint string) (*resty.Response, error) {
	resp, err := r.Execute(method, endpoint)
	if err != nil {
		b.log.Warn("backend request failed", zap.String("method", method), zap.String("url", endpoint), zap.Error(err))
		return nil, &APIError{Kind: KindTransport, Message: "network error", Err: err}
	}
	if !resp.IsSuccess() {
		apiErr := statusError(resp)
		b.log.Debug("backend returned error status",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message))
		return resp, apiErr
	}
	return resp, nil
}

var messageFields = []string{"error", "message", "detail", "non_field_errors.0"}

func statusError(resp *resty.Response) *APIError {
	apiErr := &APIError{
		Kind:       KindStatus,
		StatusCode: resp.StatusCode(),
		Message:    fmt.Sprintf("request failed with status %d", resp.StatusCode()),
	}
	if !strings.Contains(resp.Header().Get("Content-Type"), "json") {
		return apiErr
	}
	body := resp.Body()
	for _, field := range messageFields {
		if msg := gjson.GetBytes(body, field).String(); msg != "" {
			apiErr.Message = msg
			apiErr.FromServer = true
			break
		}
	}
	return apiErr
}

func decode(resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("decode %s response: %w", resp.Request.URL, err)
	}
	return nil
}

// Services bundles every API area behind one token source.
type Services struct {
	Auth         AuthServiceInterface
	Jobs         JobServiceInterface
	Resumes      ResumeServiceInterface
	Applications ApplicationServiceInterface
	Categories   CategoryServiceInterface
}

func NewServices(b *Backend) *Services {
	return &Services{
		Auth:         NewAuthService(b),
		Jobs:         NewJobService(b),
		Resumes:      NewResumeService(b),
		Applications: NewApplicationService(b),
		Categories:   NewCategoryService(b),
	}
}
