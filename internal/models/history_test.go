package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryWithSystemAlternates(t *testing.T) {
	h := NewHistoryWithSystem("be brief")

	const turns = 3
	for i := 0; i < turns; i++ {
		require.NoError(t, h.AppendUser("question"))
		require.NoError(t, h.AppendAssistant("answer"))
	}

	msgs := h.Messages()
	assert.Equal(t, 1+2*turns, h.Len())
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "be brief", msgs[0].Content)
	for i := 1; i < len(msgs); i += 2 {
		assert.Equal(t, RoleUser, msgs[i].Role)
		assert.Equal(t, RoleAssistant, msgs[i+1].Role)
	}
	for _, m := range msgs[1:] {
		assert.NotEqual(t, RoleSystem, m.Role)
	}
}

func TestHistoryEmptySystemMessageIsKept(t *testing.T) {
	h := NewHistoryWithSystem("")
	require.Equal(t, 1, h.Len())
	assert.Equal(t, Message{Role: RoleSystem, Content: ""}, h.Messages()[0])
}

func TestHistoryRejectsOutOfOrderTurns(t *testing.T) {
	h := NewHistory()
	assert.ErrorIs(t, h.AppendAssistant("unprompted"), ErrTurnOrder)

	require.NoError(t, h.AppendUser("one"))
	assert.ErrorIs(t, h.AppendUser("two"), ErrTurnOrder)
	assert.Equal(t, 1, h.Len())
}

func TestHistoryMessagesIsACopy(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.AppendUser("hello"))

	msgs := h.Messages()
	msgs[0].Content = "mutated"
	assert.Equal(t, "hello", h.Messages()[0].Content)
}
