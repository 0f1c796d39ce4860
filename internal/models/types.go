package models

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem    Role = openai.ChatMessageRoleSystem
	RoleUser      Role = openai.ChatMessageRoleUser
	RoleAssistant Role = openai.ChatMessageRoleAssistant
)

// Valid reports whether r is one of the three roles accepted on the wire
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ParseRole converts a raw role string, rejecting anything outside system/user/assistant
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid message role %q", s)
	}
	return r, nil
}

// Message represents one turn in a conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Params carries the sampling parameters sent with every completion request
type Params struct {
	Model       string
	MaxTokens   int
	SampleCount int
	Temperature float64
	TopP        float64
}

// ChatRequest is the body of POST /v1/chat/completions.
// None of the fields are omitempty: the API expects all sampling parameters on every call.
type ChatRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
	N           int       `json:"n"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
}

// PromptRequest is the body of the legacy POST /v1/completions endpoint
type PromptRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	N           int     `json:"n"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}
