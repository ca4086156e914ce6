// Package httpapi provides the action runtime: the outbound adapter that
// issues exactly one HTTP request per materialized command. No retries, no
// transformation of results; errors propagate to the caller unchanged.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matanmalka1/actiongate/internal/domain/action"
	"github.com/matanmalka1/actiongate/internal/domain/journal"
	"github.com/matanmalka1/actiongate/internal/metrics"
)

// ErrInvalidReceivePayload is returned when a receive command carries a
// payload that fails validation. The receive payload is the one payload
// constructed by the caller rather than derived by the catalog, so it is
// re-validated at the runtime boundary before any network call.
var ErrInvalidReceivePayload = errors.New("invalid receive payload")

// maxResponseBodySize caps the response body read from the backend.
const maxResponseBodySize = 10 * 1024 * 1024 // 10MB

// defaultTimeout is the per-dispatch timeout when no custom client is set.
const defaultTimeout = 30 * time.Second

// Result is the raw outcome of one dispatch. A non-2xx status is not an
// error here; recovery is the caller's responsibility.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// receivePayload mirrors the caller-constructed receive body for hard
// validation at the runtime boundary.
type receivePayload struct {
	ClientID     int64  `validate:"required,gt=0"`
	BinderNumber string `validate:"required"`
}

// Dispatcher issues materialized commands against the backend API.
type Dispatcher struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	tracer     trace.Tracer
	journal    journal.Store
	metrics    *metrics.Metrics
}

// Option is a functional option for configuring a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient sets a custom HTTP client (timeouts, transport, cookies).
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.httpClient = c }
}

// WithJournal records every dispatch in the given store.
func WithJournal(s journal.Store) Option {
	return func(d *Dispatcher) { d.journal = s }
}

// WithMetrics records dispatch counters and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracerProvider sets the tracer provider for dispatch spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) { d.tracer = tp.Tracer("actiongate/httpapi") }
}

// NewDispatcher creates a Dispatcher for the backend at baseURL (including
// the API base prefix, e.g. "https://app.example.com/api/v1").
func NewDispatcher(baseURL string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		tracer:     otel.Tracer("actiongate/httpapi"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Do issues the command's request and returns the raw result. The result is
// returned untouched: a non-2xx status comes back as a Result, transport
// errors come back as-is. Receive commands get their payload re-validated
// first and fail hard before any network call.
func (d *Dispatcher) Do(ctx context.Context, cmd *action.Command) (*Result, error) {
	if cmd.Key == action.CanonicalReceive.String() {
		if err := d.validateReceive(cmd.Payload); err != nil {
			return nil, err
		}
	}

	requestID := uuid.NewString()
	ctx, span := d.tracer.Start(ctx, "actiongate.dispatch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("action.key", cmd.Key),
			attribute.String("http.method", strings.ToUpper(cmd.Method.String())),
			attribute.String("http.endpoint", cmd.Endpoint),
			attribute.String("request.id", requestID),
		))
	defer span.End()

	start := time.Now()
	result, err := d.dispatch(ctx, cmd, requestID)
	elapsed := time.Since(start)

	d.record(ctx, cmd, requestID, result, err, start, elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", result.StatusCode))
	return result, nil
}

// dispatch builds and issues the single HTTP request.
func (d *Dispatcher) dispatch(ctx context.Context, cmd *action.Command, requestID string) (*Result, error) {
	var body io.Reader
	if cmd.Payload != nil {
		encoded, err := json.Marshal(cmd.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(cmd.Method.String()), d.baseURL+cmd.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       data,
		RequestID:  requestID,
	}, nil
}

// record writes the journal entry and metrics for one dispatch.
func (d *Dispatcher) record(ctx context.Context, cmd *action.Command, requestID string, result *Result, err error, start time.Time, elapsed time.Duration) {
	status := "error"
	statusCode := 0
	if err == nil && result != nil {
		statusCode = result.StatusCode
		status = fmt.Sprintf("%dxx", statusCode/100)
	}
	d.metrics.RecordDispatch(cmd.Key, status, elapsed.Seconds())

	if d.journal == nil {
		return
	}
	entry := &journal.Entry{
		RequestID:    requestID,
		CommandKey:   cmd.Key,
		Method:       cmd.Method.String(),
		Endpoint:     cmd.Endpoint,
		StatusCode:   statusCode,
		Duration:     elapsed,
		DispatchedAt: start.UTC(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	// Journaling must not fail the dispatch; the result is already decided.
	_ = d.journal.Append(context.WithoutCancel(ctx), entry)
}

// validateReceive enforces the receive payload contract at the runtime
// boundary (positive client_id, non-empty binder_number).
func (d *Dispatcher) validateReceive(payload map[string]any) error {
	p := receivePayload{}
	if id, ok := action.PayloadInt(payload, "client_id"); ok {
		p.ClientID = id
	}
	if number, ok := payload["binder_number"].(string); ok {
		p.BinderNumber = strings.TrimSpace(number)
	}
	if err := d.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReceivePayload, err)
	}
	return nil
}
