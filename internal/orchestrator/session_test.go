package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleepstars/gpto/internal/clients"
	"github.com/sleepstars/gpto/internal/config"
	"github.com/sleepstars/gpto/internal/logger"
	"github.com/sleepstars/gpto/internal/mocks"
	"github.com/sleepstars/gpto/internal/models"
)

func init() {
	logger.InitLogger(logger.INFO, "test")
}

func testConfig() config.EffectiveConfig {
	return config.EffectiveConfig{
		Token:       "tok",
		Model:       "gpt-3.5-turbo",
		Endpoint:    "http://localhost",
		MaxTokens:   50,
		Temperature: 1,
		TopP:        1,
		SampleCount: 1,
		API:         config.APIChat,
	}
}

// replyCounter answers "reply N" for the Nth call
func replyCounter() *mocks.MockCompleter {
	calls := 0
	return &mocks.MockCompleter{
		CompleteFunc: func(ctx context.Context, cfg config.EffectiveConfig, messages []models.Message) ([]string, error) {
			calls++
			return []string{fmt.Sprintf("reply %d", calls)}, nil
		},
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("terminal gone")
}

func TestSession_HistoryOrdering(t *testing.T) {
	completer := replyCounter()
	var out bytes.Buffer

	s := NewSession(completer, testConfig(), strings.NewReader("one\ntwo\nthree\nquit\n"), &out,
		WithInstructions("be brief"))
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, Done, s.State())

	history := s.History()
	require.Len(t, history, 1+2*3)
	assert.Equal(t, models.Message{Role: models.RoleSystem, Content: "be brief"}, history[0])
	for i := 0; i < 3; i++ {
		assert.Equal(t, models.RoleUser, history[1+2*i].Role)
		assert.Equal(t, models.RoleAssistant, history[2+2*i].Role)
		assert.Equal(t, fmt.Sprintf("reply %d", i+1), history[2+2*i].Content)
	}

	// each call carries the full history up to and including the new user turn
	require.Len(t, completer.Histories, 3)
	assert.Len(t, completer.Histories[0], 2)
	assert.Len(t, completer.Histories[1], 4)
	assert.Len(t, completer.Histories[2], 6)
	assert.Equal(t, "three", completer.Histories[2][5].Content)

	assert.Equal(t, "> reply 1\n> reply 2\n> reply 3\n> ", out.String())
}

func TestSession_EmptyInstructionsStillSeedSystem(t *testing.T) {
	completer := replyCounter()
	s := NewSession(completer, testConfig(), strings.NewReader("hi\nq\n"), &bytes.Buffer{}, WithInstructions(""))
	require.NoError(t, s.Run(context.Background()))

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, models.Message{Role: models.RoleSystem, Content: ""}, history[0])
}

func TestSession_NoInstructions(t *testing.T) {
	completer := replyCounter()
	s := NewSession(completer, testConfig(), strings.NewReader("hi\nq\n"), &bytes.Buffer{})
	require.NoError(t, s.Run(context.Background()))

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
}

func TestSession_TerminationTokens(t *testing.T) {
	for _, input := range []string{"quit\n", "q\n", "  q  \n", "\tquit"} {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			completer := replyCounter()
			s := NewSession(completer, testConfig(), strings.NewReader(input+"\nnever sent\n"), &bytes.Buffer{})

			require.NoError(t, s.Run(context.Background()))
			assert.Equal(t, Done, s.State())
			assert.Empty(t, completer.Histories, "no call after a termination token")
		})
	}
}

func TestSession_TerminationIsCaseSensitive(t *testing.T) {
	completer := replyCounter()
	s := NewSession(completer, testConfig(), strings.NewReader("QUIT\nq\n"), &bytes.Buffer{})

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, completer.Histories, 1)
	assert.Equal(t, "QUIT", completer.Histories[0][0].Content)
}

func TestSession_BlankLinesReprompt(t *testing.T) {
	completer := replyCounter()
	var out bytes.Buffer
	s := NewSession(completer, testConfig(), strings.NewReader("\n   \nhi\nq\n"), &out)

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, completer.Histories, 1)
	assert.Equal(t, "> > > reply 1\n> ", out.String())
}

func TestSession_EOFEndsSession(t *testing.T) {
	completer := replyCounter()
	s := NewSession(completer, testConfig(), strings.NewReader("hi\nlast line without newline"), &bytes.Buffer{})

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, Done, s.State())
	require.Len(t, completer.Histories, 2)
	assert.Len(t, s.History(), 4)
}

func TestSession_ErrorEndsSession(t *testing.T) {
	calls := 0
	completer := &mocks.MockCompleter{
		CompleteFunc: func(ctx context.Context, cfg config.EffectiveConfig, messages []models.Message) ([]string, error) {
			calls++
			if calls == 2 {
				return nil, &clients.TransportError{StatusCode: 500, Body: "boom"}
			}
			return []string{"ok"}, nil
		},
	}

	s := NewSession(completer, testConfig(), strings.NewReader("one\ntwo\nthree\n"), &bytes.Buffer{})
	err := s.Run(context.Background())

	var te *clients.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 500, te.StatusCode)
	assert.Equal(t, Done, s.State())
	assert.Empty(t, s.History(), "history is dropped")
	assert.Len(t, completer.Histories, 2, "no further reads after an error")
}

func TestSession_InputError(t *testing.T) {
	completer := replyCounter()
	s := NewSession(completer, testConfig(), failingReader{}, &bytes.Buffer{})

	err := s.Run(context.Background())
	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Contains(t, err.Error(), "terminal gone")
	assert.Equal(t, Done, s.State())
	assert.Empty(t, completer.Histories)
}

func TestSession_MultipleSamples(t *testing.T) {
	completer := &mocks.MockCompleter{
		CompleteFunc: func(ctx context.Context, cfg config.EffectiveConfig, messages []models.Message) ([]string, error) {
			return []string{"a", "b"}, nil
		},
	}
	cfg := testConfig()
	cfg.SampleCount = 2
	cfg.Suffix = "!"
	var out bytes.Buffer

	s := NewSession(completer, cfg, strings.NewReader("hi\nq\n"), &out, WithPrompt(""))
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, "a\n\n---b!\n", out.String())
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "a\n\n---b", history[1].Content, "suffix is not part of the history")
}

func TestSession_UniqueIDs(t *testing.T) {
	a := NewSession(replyCounter(), testConfig(), strings.NewReader(""), &bytes.Buffer{})
	b := NewSession(replyCounter(), testConfig(), strings.NewReader(""), &bytes.Buffer{})
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, AwaitingInput, a.State())
}
