package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sleepstars/gpto/internal/config"
	"github.com/sleepstars/gpto/internal/logger"
	"github.com/sleepstars/gpto/internal/modelbridge"
)

// ErrNoPrompt is returned for a Prompt request without text
var ErrNoPrompt = errors.New("no prompt provided")

// Mode selects what one invocation does
type Mode int

const (
	// Prompt sends a single input and returns the rendered completions
	Prompt Mode = iota
	// Conversation runs an interactive session until the user quits
	Conversation
	// ListModels returns the model ids available to the token
	ListModels
)

func (m Mode) String() string {
	switch m {
	case Prompt:
		return "prompt"
	case Conversation:
		return "conversation"
	case ListModels:
		return "models"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Request is the validated input of one invocation
type Request struct {
	Mode Mode
	// Text is the prompt text in Prompt mode
	Text string
	// Instructions seeds a system message in Conversation mode when non-nil
	Instructions *string
}

// Result is what a mode produced. Text is empty after a conversation.
type Result struct {
	Text   string
	Models []string
}

// Dispatcher routes a request to the runner for its mode
type Dispatcher struct {
	runners map[Mode]runner
	logger  *logger.Logger
}

// NewDispatcher creates a dispatcher. in and out are only used by conversations.
func NewDispatcher(completer modelbridge.Completer, in io.Reader, out io.Writer) *Dispatcher {
	return &Dispatcher{
		runners: map[Mode]runner{
			Prompt:       newPromptRunner(completer),
			Conversation: newConversationRunner(completer, in, out),
			ListModels:   newModelsRunner(completer),
		},
		logger: logger.GetLogger().WithComponent("dispatcher"),
	}
}

// Dispatch runs req with the resolved configuration
func (d *Dispatcher) Dispatch(ctx context.Context, cfg config.EffectiveConfig, req Request) (Result, error) {
	r, ok := d.runners[req.Mode]
	if !ok {
		return Result{}, fmt.Errorf("unknown mode %s", req.Mode)
	}

	switch req.Mode {
	case Prompt:
		if strings.TrimSpace(req.Text) == "" {
			return Result{}, ErrNoPrompt
		}
	case Conversation:
		if cfg.API != config.APIChat {
			return Result{}, modelbridge.ErrChatRequired
		}
	}

	d.logger.Debug("Executing %s with model=%s endpoint=%s", r.Name(), cfg.Model, cfg.Endpoint)

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	res, err := r.Run(ctx, cfg, req)
	if err != nil {
		d.logger.WithError(err).Debug("%s failed", r.Name())
		return Result{}, err
	}

	d.logger.Debug("%s completed", r.Name())
	return res, nil
}
