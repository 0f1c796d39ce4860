package modelbridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sleepstars/gpto/internal/clients"
	"github.com/sleepstars/gpto/internal/config"
	"github.com/sleepstars/gpto/internal/logger"
	"github.com/sleepstars/gpto/internal/models"
	"github.com/sleepstars/gpto/internal/parser"
)

// API paths, relative to the configured endpoint
const (
	ChatCompletionsPath = "/v1/chat/completions"
	CompletionsPath     = "/v1/completions"
	ModelsPath          = "/v1/models"
)

// ErrChatRequired is returned when a message history is sent to the legacy completions API
var ErrChatRequired = errors.New("conversations require the chat api")

// Completer is the completion capability used by the orchestrator
type Completer interface {
	// CompletePrompt sends one input text using the configured API variant
	CompletePrompt(ctx context.Context, cfg config.EffectiveConfig, text string) ([]string, error)
	// Complete sends a full message history to the chat API
	Complete(ctx context.Context, cfg config.EffectiveConfig, messages []models.Message) ([]string, error)
	// ListModels returns the model ids available to the token
	ListModels(ctx context.Context, cfg config.EffectiveConfig) ([]string, error)
}

type variant struct {
	path   string
	decode func([]byte) ([]parser.Completion, error)
}

var variants = map[config.API]variant{
	config.APIChat:        {path: ChatCompletionsPath, decode: parser.ParseChat},
	config.APICompletions: {path: CompletionsPath, decode: parser.ParseLegacy},
}

// ModelBridge turns resolved configuration into API calls and parsed results
type ModelBridge struct {
	Requester clients.Requester
	Logger    *logger.Logger
}

// NewModelBridge creates a bridge issuing calls through requester
func NewModelBridge(requester clients.Requester) *ModelBridge {
	log := logger.GetLogger().WithComponent("model_bridge")
	log.Debug("Creating new model bridge")

	return &ModelBridge{
		Requester: requester,
		Logger:    log,
	}
}

// CompletePrompt implements Completer
func (b *ModelBridge) CompletePrompt(ctx context.Context, cfg config.EffectiveConfig, text string) ([]string, error) {
	v, ok := variants[cfg.API]
	if !ok {
		return nil, fmt.Errorf("unsupported api %q", cfg.API)
	}

	var payload interface{}
	if cfg.API == config.APICompletions {
		payload = models.BuildPrompt(cfg.Params(), text)
	} else {
		payload = models.BuildSingle(cfg.Params(), text)
	}

	b.Logger.Debug("Calling %s with model=%s n=%d", v.path, cfg.Model, cfg.SampleCount)
	return b.complete(ctx, cfg, v, payload)
}

// Complete implements Completer
func (b *ModelBridge) Complete(ctx context.Context, cfg config.EffectiveConfig, messages []models.Message) ([]string, error) {
	if cfg.API != config.APIChat {
		return nil, ErrChatRequired
	}
	v := variants[config.APIChat]

	b.Logger.Debug("Calling %s with model=%s and %d messages", v.path, cfg.Model, len(messages))
	return b.complete(ctx, cfg, v, models.BuildChat(cfg.Params(), messages))
}

func (b *ModelBridge) complete(ctx context.Context, cfg config.EffectiveConfig, v variant, payload interface{}) ([]string, error) {
	body, err := b.Requester.Execute(ctx, clients.Call{
		Method:       http.MethodPost,
		URL:          endpointURL(cfg.Endpoint, v.path),
		Payload:      payload,
		Token:        cfg.Token,
		Timeout:      cfg.Timeout,
		ShowProgress: !cfg.DisableSpinner,
	})
	if err != nil {
		b.Logger.WithError(err).Debug("Completion call failed")
		return nil, err
	}

	completions, err := v.decode(body)
	if err != nil {
		b.Logger.WithError(err).Debug("Could not parse completion body")
		return nil, err
	}

	b.Logger.Debug("Completion call returned %d choices", len(completions))
	return parser.Texts(completions), nil
}

// ListModels implements Completer
func (b *ModelBridge) ListModels(ctx context.Context, cfg config.EffectiveConfig) ([]string, error) {
	body, err := b.Requester.Execute(ctx, clients.Call{
		Method:       http.MethodGet,
		URL:          endpointURL(cfg.Endpoint, ModelsPath),
		Token:        cfg.Token,
		Timeout:      cfg.Timeout,
		ShowProgress: !cfg.DisableSpinner,
	})
	if err != nil {
		b.Logger.WithError(err).Debug("Model list call failed")
		return nil, err
	}
	return parser.ParseModelList(body)
}

func endpointURL(endpoint, path string) string {
	return strings.TrimRight(strings.TrimSpace(endpoint), "/") + path
}
