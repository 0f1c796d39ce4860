package clients

import (
	"context"
	"time"
)

// Requester performs one HTTP call and returns the raw response body
type Requester interface {
	Execute(ctx context.Context, call Call) ([]byte, error)
}

// Call describes a single request to the completion API
type Call struct {
	Method string
	URL    string
	// Payload is JSON-encoded as the request body; nil sends no body
	Payload interface{}
	Token   string
	// Timeout bounds the whole call including reading the body; zero means no bound
	Timeout      time.Duration
	ShowProgress bool
}

// Progress is a transient indicator shown while a call is outstanding.
// Stop must leave the output line clean.
type Progress interface {
	Start()
	Stop()
}
