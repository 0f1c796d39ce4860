package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sleepstars/gpto/internal/logger"
)

// Executor issues HTTP calls against the completion API
type Executor struct {
	client      *http.Client
	newProgress func() Progress
	userAgent   string
	logger      *logger.Logger
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithProgress sets the factory used for the progress indicator
func WithProgress(factory func() Progress) ExecutorOption {
	return func(e *Executor) {
		e.newProgress = factory
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ExecutorOption {
	return func(e *Executor) {
		e.userAgent = ua
	}
}

// NewExecutor creates an executor. By default the progress indicator is a
// spinner on stdout, the stream results are printed to.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:      &http.Client{},
		newProgress: func() Progress { return NewSpinner(os.Stdout) },
		userAgent:   "gpto",
		logger:      logger.GetLogger().WithComponent("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs the call once, without retry. A 2xx response body is
// returned verbatim; anything else is a *TransportError. When ShowProgress is
// set the indicator is stopped before Execute returns, on every path.
func (e *Executor) Execute(ctx context.Context, call Call) ([]byte, error) {
	var body io.Reader
	if call.Payload != nil {
		data, err := json.Marshal(call.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		e.logger.Debug("%s %s body=%s", call.Method, call.URL, data)
		body = bytes.NewReader(data)
	} else {
		e.logger.Debug("%s %s", call.Method, call.URL)
	}

	if call.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if call.Token != "" {
		req.Header.Set("Authorization", "Bearer "+call.Token)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	if call.ShowProgress && e.newProgress != nil {
		p := e.newProgress()
		p.Start()
		defer p.Stop()
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, e.transportFailure(ctx, call, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, e.transportFailure(ctx, call, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Debug("%s %s returned %d", call.Method, call.URL, resp.StatusCode)
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	e.logger.Debug("%s %s returned %d (%d bytes)", call.Method, call.URL, resp.StatusCode, len(data))
	return data, nil
}

func (e *Executor) transportFailure(ctx context.Context, call Call, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.logger.Debug("%s %s timed out after %s", call.Method, call.URL, call.Timeout)
		return &TransportError{Err: fmt.Errorf("timed out after %s: %w", call.Timeout, context.DeadlineExceeded)}
	}
	e.logger.Debug("%s %s failed: %v", call.Method, call.URL, err)
	return &TransportError{Err: err}
}
