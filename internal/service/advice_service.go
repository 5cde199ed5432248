package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"growth_assessment/internal/config"
	"growth_assessment/pkg/logger"
	"growth_assessment/pkg/monitoring"
	"growth_assessment/pkg/tracing"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const (
	AdvicePath     = "/api/llm-advice"
	SaveReportPath = "/api/save-user-report"
	HealthPath     = "/healthz"

	maxLoggedBody = 2048
)

var (
	// ErrMissingFields is the validation failure of the gateway: a required field is falsy.
	ErrMissingFields = errors.New("Missing required fields")
	// ErrMalformedRequest means the body could not be read as JSON at all.
	ErrMalformedRequest = errors.New("request body is not a JSON document")
	// ErrInvalidUpstreamBody means the backend answered 2xx with something that is not JSON.
	ErrInvalidUpstreamBody = errors.New("backend returned invalid JSON")
)

// UpstreamError is any failure talking to the advice backend.
type UpstreamError struct {
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("Backend API error: %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("Backend API error: %d", e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// AdviceRequest carries the two gateway fields exactly as the client sent them.
type AdviceRequest struct {
	UserID         json.RawMessage `json:"userId"`
	AssessmentData json.RawMessage `json:"assessmentData"`
}

// ParseAdviceRequest validates a gateway body. Bodies that are not JSON, or are
// JSON null, yield ErrMalformedRequest; any other value without both fields
// present and truthy yields ErrMissingFields.
func ParseAdviceRequest(body []byte) (AdviceRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) || string(trimmed) == "null" {
		return AdviceRequest{}, ErrMalformedRequest
	}
	if trimmed[0] != '{' {
		return AdviceRequest{}, ErrMissingFields
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return AdviceRequest{}, ErrMalformedRequest
	}

	req := AdviceRequest{
		UserID:         fields["userId"],
		AssessmentData: fields["assessmentData"],
	}
	if IsFalsy(req.UserID) || IsFalsy(req.AssessmentData) {
		return AdviceRequest{}, ErrMissingFields
	}
	return req, nil
}

// IsFalsy reports whether a raw JSON value counts as missing: absent, null,
// false, a zero number or the empty string. Empty objects and arrays are present.
func IsFalsy(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	switch v {
	case "", "null", "false", `""`:
		return true
	}
	if c := v[0]; c == '-' || (c >= '0' && c <= '9') {
		f, err := strconv.ParseFloat(v, 64)
		return err == nil && f == 0
	}
	return false
}

// AdviceService relays requests to the advice backend. The backend URL can be
// swapped at runtime when the configuration file changes.
type AdviceService struct {
	backendURL  atomic.Pointer[string]
	failureMode atomic.Pointer[string]
	client      *http.Client
}

func NewAdviceService(cfg config.AdviceConfig, client *http.Client) *AdviceService {
	if client == nil {
		client = &http.Client{}
	}
	s := &AdviceService{client: client}
	s.SetBackendURL(cfg.BackendURL)
	s.SetFailureMode(cfg.UpstreamFailureMode)
	return s
}

// FailureMode is config.FailureModeUnavailable or config.FailureModeInternal.
func (s *AdviceService) FailureMode() string {
	return *s.failureMode.Load()
}

func (s *AdviceService) SetFailureMode(mode string) {
	if mode != config.FailureModeInternal {
		mode = config.FailureModeUnavailable
	}
	s.failureMode.Store(&mode)
}

func (s *AdviceService) BackendURL() string {
	return *s.backendURL.Load()
}

func (s *AdviceService) SetBackendURL(url string) {
	url = strings.TrimRight(url, "/")
	s.backendURL.Store(&url)
}

// OnConfigChange picks up the backend URL and failure mode of a reloaded configuration.
func (s *AdviceService) OnConfigChange(cfg *config.Config) {
	s.SetFailureMode(cfg.Advice.UpstreamFailureMode)

	next := strings.TrimRight(cfg.Advice.BackendURL, "/")
	if next == "" || next == s.BackendURL() {
		return
	}
	logger.Log.Info("Advice backend changed",
		zap.String("from", s.BackendURL()),
		zap.String("to", next))
	s.SetBackendURL(next)
}

// GetAdvice forwards both fields to the backend and returns its JSON body unchanged.
func (s *AdviceService) GetAdvice(ctx context.Context, req AdviceRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, AdvicePath, payload)
}

// SaveUserReport forwards an assessmentData object to the backend report endpoint.
func (s *AdviceService) SaveUserReport(ctx context.Context, assessmentData json.RawMessage) (json.RawMessage, error) {
	return s.post(ctx, SaveReportPath, assessmentData)
}

// Ping checks the backend health endpoint.
func (s *AdviceService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BackendURL()+HealthPath, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return &UpstreamError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (s *AdviceService) post(ctx context.Context, path string, payload []byte) (out json.RawMessage, err error) {
	url := s.BackendURL() + path

	ctx, finish := tracing.StartSpan(ctx, "advice "+path, attribute.String("http.url", url))
	start := time.Now()
	outcome := monitoring.OutcomeSuccess
	defer func() {
		monitoring.ObserveUpstream(path, outcome, time.Since(start))
		finish(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		outcome = monitoring.OutcomeTransportErr
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := s.client.Do(req)
	if err != nil {
		outcome = monitoring.OutcomeTransportErr
		logger.Log.Error("Backend API call failed", zap.String("url", url), zap.Error(err))
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = monitoring.OutcomeTransportErr
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = monitoring.OutcomeStatus
		logger.Log.Error("Backend API error",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncateBody(body)))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}

	if !json.Valid(body) {
		outcome = monitoring.OutcomeInvalidBody
		logger.Log.Error("Backend returned invalid JSON",
			zap.String("url", url),
			zap.String("body", truncateBody(body)))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: truncateBody(body), Err: ErrInvalidUpstreamBody}
	}

	return json.RawMessage(body), nil
}

func truncateBody(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody])
	}
	return string(b)
}
