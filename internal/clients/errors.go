package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// TransportError reports a call that did not produce a successful response:
// a non-2xx status, an unreachable host, or an elapsed timeout.
type TransportError struct {
	// StatusCode is zero when no response was received
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("did not get response from server: %v", e.Err)
	}
	msg := fmt.Sprintf("request failed with status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if detail := e.detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call was cut off by its deadline
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// detail prefers the provider's error message over the raw body
func (e *TransportError) detail() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return ""
	}
	var apiErr openai.ErrorResponse
	if err := json.Unmarshal([]byte(body), &apiErr); err == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return body
}
