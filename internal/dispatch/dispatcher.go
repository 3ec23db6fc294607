package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

// ResultKind classifies the outcome of an upstream dispatch
type ResultKind int

const (
	KindSuccess ResultKind = iota
	KindHTTPError
	KindTimeout
	KindNetworkFailure
)

// String returns the stable name of the outcome, used in logs and metrics
func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindHTTPError:
		return "http_error"
	case KindTimeout:
		return "timeout"
	case KindNetworkFailure:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Result is the classified outcome of a single upstream call. It is created
// by the dispatcher, consumed exactly once by the translating handler, and
// never cached or persisted.
type Result struct {
	Kind   ResultKind
	Status int
	Header http.Header
	Body   []byte
	Err    error
}

// Request describes one outbound upstream call. The body is already
// serialized; ContentType tells the upstream how to read it.
type Request struct {
	Service     string
	URL         string
	ContentType string
	Headers     map[string]string
	Body        []byte
	Timeout     time.Duration
}

// Dispatcher performs exactly one outbound call per invocation. No retries:
// a second attempt could duplicate non-idempotent upstream side effects
// such as initiating a phone call.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) Result
}

// HTTPDispatcher is the production Dispatcher backed by net/http
type HTTPDispatcher struct {
	client *http.Client
}

// NewHTTPDispatcher creates a dispatcher. The client carries no global
// timeout; every dispatch arms its own explicit deadline.
func NewHTTPDispatcher() *HTTPDispatcher {
	return &HTTPDispatcher{
		client: &http.Client{},
	}
}

// Dispatch sends one POST to the upstream and classifies the outcome.
// The deadline is armed immediately before the call and disarmed on
// completion, so it can never fire after the result has been returned.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, req Request) Result {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return Result{Kind: KindNetworkFailure, Err: fmt.Errorf("failed to build upstream request: %w", err)}
	}

	httpReq.Header.Set(utils.HeaderContentType, req.ContentType)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := d.client.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		kind := classifyTransportError(ctx, err)
		logger.WarnCtx(ctx, "Upstream dispatch failed",
			"service", req.Service,
			"outcome", kind.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return Result{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// The deadline can also fire mid-read of a slow body
		kind := classifyTransportError(ctx, err)
		logger.WarnCtx(ctx, "Failed to read upstream response body",
			"service", req.Service,
			"outcome", kind.String(),
			"status_code", resp.StatusCode,
			"error", err,
		)
		return Result{Kind: kind, Err: err}
	}

	logger.InfoCtx(ctx, "Upstream dispatch completed",
		"service", req.Service,
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"response_size", len(body),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Kind: KindHTTPError, Status: resp.StatusCode, Header: resp.Header, Body: body}
	}
	return Result{Kind: KindSuccess, Status: resp.StatusCode, Header: resp.Header, Body: body}
}

// classifyTransportError separates "service is slow" from "service is down"
func classifyTransportError(ctx context.Context, err error) ResultKind {
	if ctx.Err() == context.DeadlineExceeded {
		return KindTimeout
	}
	return KindNetworkFailure
}

// JSONBody serializes v for a JSON dispatch
func JSONBody(v interface{}) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream request body: %w", err)
	}
	return body, nil
}

// FormBody serializes values for a form-encoded dispatch
func FormBody(values url.Values) []byte {
	return []byte(values.Encode())
}
