package mocks

import (
	"context"
	"sync"

	"github.com/sleepstars/gpto/internal/clients"
	"github.com/sleepstars/gpto/internal/config"
	"github.com/sleepstars/gpto/internal/models"
)

// MockRequester implements clients.Requester for testing
type MockRequester struct {
	ExecuteFunc func(ctx context.Context, call clients.Call) ([]byte, error)

	mu    sync.Mutex
	Calls []clients.Call
}

func (m *MockRequester) Execute(ctx context.Context, call clients.Call) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, call)
	}
	return []byte(`{"choices":[{"message":{"role":"assistant","content":""}}]}`), nil
}

// MockCompleter implements modelbridge.Completer for testing
type MockCompleter struct {
	CompletePromptFunc func(ctx context.Context, cfg config.EffectiveConfig, text string) ([]string, error)
	CompleteFunc       func(ctx context.Context, cfg config.EffectiveConfig, messages []models.Message) ([]string, error)
	ListModelsFunc     func(ctx context.Context, cfg config.EffectiveConfig) ([]string, error)

	// Histories records the messages passed to each Complete call
	Histories [][]models.Message
}

func (m *MockCompleter) CompletePrompt(ctx context.Context, cfg config.EffectiveConfig, text string) ([]string, error) {
	if m.CompletePromptFunc != nil {
		return m.CompletePromptFunc(ctx, cfg, text)
	}
	return []string{""}, nil
}

func (m *MockCompleter) Complete(ctx context.Context, cfg config.EffectiveConfig, messages []models.Message) ([]string, error) {
	snapshot := make([]models.Message, len(messages))
	copy(snapshot, messages)
	m.Histories = append(m.Histories, snapshot)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, cfg, messages)
	}
	return []string{""}, nil
}

func (m *MockCompleter) ListModels(ctx context.Context, cfg config.EffectiveConfig) ([]string, error) {
	if m.ListModelsFunc != nil {
		return m.ListModelsFunc(ctx, cfg)
	}
	return nil, nil
}

// MockProgress counts Start and Stop calls
type MockProgress struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (p *MockProgress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
}

func (p *MockProgress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

// Counts returns the number of Start and Stop calls so far
func (p *MockProgress) Counts() (starts, stops int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts, p.stops
}

// Active reports whether a Start has not yet been matched by a Stop
func (p *MockProgress) Active() bool {
	starts, stops := p.Counts()
	return starts != stops
}
