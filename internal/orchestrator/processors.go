package orchestrator

import (
	"context"
	"io"

	"github.com/sleepstars/gpto/internal/config"
	"github.com/sleepstars/gpto/internal/logger"
	"github.com/sleepstars/gpto/internal/modelbridge"
	"github.com/sleepstars/gpto/internal/parser"
)

// runner executes one mode
type runner interface {
	Name() string
	Run(ctx context.Context, cfg config.EffectiveConfig, req Request) (Result, error)
}

type promptRunner struct {
	completer modelbridge.Completer
	logger    *logger.Logger
}

func newPromptRunner(completer modelbridge.Completer) *promptRunner {
	return &promptRunner{
		completer: completer,
		logger:    logger.GetLogger().WithComponent("prompt_runner"),
	}
}

func (r *promptRunner) Name() string {
	return "prompt_runner"
}

func (r *promptRunner) Run(ctx context.Context, cfg config.EffectiveConfig, req Request) (Result, error) {
	texts, err := r.completer.CompletePrompt(ctx, cfg, req.Text)
	if err != nil {
		return Result{}, err
	}
	r.logger.Debug("Rendering %d completions", len(texts))
	return Result{Text: parser.Render(texts, cfg.Suffix)}, nil
}

type conversationRunner struct {
	completer modelbridge.Completer
	in        io.Reader
	out       io.Writer
}

func newConversationRunner(completer modelbridge.Completer, in io.Reader, out io.Writer) *conversationRunner {
	return &conversationRunner{completer: completer, in: in, out: out}
}

func (r *conversationRunner) Name() string {
	return "conversation_runner"
}

func (r *conversationRunner) Run(ctx context.Context, cfg config.EffectiveConfig, req Request) (Result, error) {
	var opts []SessionOption
	if req.Instructions != nil {
		opts = append(opts, WithInstructions(*req.Instructions))
	}
	s := NewSession(r.completer, cfg, r.in, r.out, opts...)
	if err := s.Run(ctx); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

type modelsRunner struct {
	completer modelbridge.Completer
}

func newModelsRunner(completer modelbridge.Completer) *modelsRunner {
	return &modelsRunner{completer: completer}
}

func (r *modelsRunner) Name() string {
	return "models_runner"
}

func (r *modelsRunner) Run(ctx context.Context, cfg config.EffectiveConfig, _ Request) (Result, error) {
	ids, err := r.completer.ListModels(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Models: ids}, nil
}
