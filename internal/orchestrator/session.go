package orchestrator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/sleepstars/gpto/internal/config"
	"github.com/sleepstars/gpto/internal/logger"
	"github.com/sleepstars/gpto/internal/modelbridge"
	"github.com/sleepstars/gpto/internal/models"
	"github.com/sleepstars/gpto/internal/parser"
)

// State is a conversation session state
type State int

const (
	AwaitingInput State = iota
	Requesting
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Requesting:
		return "requesting"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultPrompt is written before each read
const DefaultPrompt = "> "

// InputError reports that the interactive input could not be read
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("could not read input: %v", e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

func isQuit(line string) bool {
	return line == "quit" || line == "q"
}

// Session is one interactive conversation. It owns its history, which is
// dropped when the session ends.
type Session struct {
	ID string

	completer modelbridge.Completer
	cfg       config.EffectiveConfig
	in        *bufio.Reader
	out       io.Writer
	prompt    string

	history      *models.History
	instructions *string
	state        State
	logger       *logger.Logger
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithInstructions seeds the history with a system message, even when empty
func WithInstructions(instructions string) SessionOption {
	return func(s *Session) {
		s.instructions = &instructions
	}
}

// WithPrompt replaces DefaultPrompt
func WithPrompt(prompt string) SessionOption {
	return func(s *Session) {
		s.prompt = prompt
	}
}

// NewSession creates a session in the AwaitingInput state
func NewSession(completer modelbridge.Completer, cfg config.EffectiveConfig, in io.Reader, out io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		completer: completer,
		cfg:       cfg,
		in:        bufio.NewReader(in),
		out:       out,
		prompt:    DefaultPrompt,
		state:     AwaitingInput,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.instructions != nil {
		s.history = models.NewHistoryWithSystem(*s.instructions)
	} else {
		s.history = models.NewHistory()
	}
	s.logger = logger.GetLogger().WithComponent("session " + s.ID)
	return s
}

// State reports the current state
func (s *Session) State() State {
	return s.state
}

// History returns a copy of the messages exchanged so far. It is empty once
// the session ended with an error.
func (s *Session) History() []models.Message {
	if s.history == nil {
		return nil
	}
	return s.history.Messages()
}

// Run reads lines until the user quits, the input ends, or a call fails.
// Every reply is printed before the next prompt.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Debug("Starting conversation with model=%s", s.cfg.Model)

	for s.state != Done {
		fmt.Fprint(s.out, s.prompt)

		line, readErr := s.in.ReadString('\n')
		eof := errors.Is(readErr, io.EOF)
		if readErr != nil && !eof {
			s.fail()
			return &InputError{Err: readErr}
		}

		text := strings.TrimSpace(line)
		switch {
		case isQuit(text):
			s.logger.Debug("Quit after %d messages", s.history.Len())
			s.state = Done
			continue
		case text == "":
			if eof {
				fmt.Fprintln(s.out)
				s.logger.Debug("Input closed after %d messages", s.history.Len())
				s.state = Done
			}
			continue
		}

		if err := s.turn(ctx, text); err != nil {
			s.fail()
			return err
		}
	}
	return nil
}

func (s *Session) turn(ctx context.Context, text string) error {
	if err := s.history.AppendUser(text); err != nil {
		return err
	}
	s.state = Requesting

	texts, err := s.completer.Complete(ctx, s.cfg, s.history.Messages())
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, parser.Render(texts, s.cfg.Suffix))

	if err := s.history.AppendAssistant(parser.Join(texts)); err != nil {
		return err
	}
	s.state = AwaitingInput
	return nil
}

func (s *Session) fail() {
	s.logger.Debug("Ending conversation with an error, dropping %d messages", s.history.Len())
	s.history = nil
	s.state = Done
}
