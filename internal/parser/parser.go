package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Separator is placed between completions when more than one sample is requested
const Separator = "\n\n---"

// ErrMalformedResponse matches every *MalformedResponseError via errors.Is
var ErrMalformedResponse = errors.New("malformed response")

// MalformedResponseError reports a body that lacks the fields the client consumes
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// Completion is one produced text and its position in the response
type Completion struct {
	Index int
	Text  string
}

// chatBody holds the only parts of a chat completion the client reads.
// Everything else in the body is skipped, whatever its type.
type chatBody struct {
	Choices []struct {
		Index   int          `json:"index"`
		Message *chatMessage `json:"message"`
	} `json:"choices"`
}

type chatMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentPart struct {
	Type openai.ChatMessagePartType `json:"type"`
	Text string                     `json:"text"`
}

type legacyBody struct {
	Choices []struct {
		Index int     `json:"index"`
		Text  *string `json:"text"`
	} `json:"choices"`
}

type modelListBody struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ParseChat decodes a /v1/chat/completions body. Only choices[].index and
// choices[].message.{role,content} are read.
func ParseChat(body []byte) ([]Completion, error) {
	var resp chatBody
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &MalformedResponseError{Reason: "could not decode chat completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &MalformedResponseError{Reason: "no choices in response"}
	}

	out := make([]Completion, 0, len(resp.Choices))
	for i, choice := range resp.Choices {
		msg := choice.Message
		if msg == nil || (msg.Role == "" && isAbsent(msg.Content)) {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("choice %d has no message", i)}
		}
		text, err := contentText(msg.Content)
		if err != nil {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("choice %d has unreadable content", i), Err: err}
		}
		out = append(out, Completion{Index: choice.Index, Text: text})
	}
	return sortByIndex(out), nil
}

// ParseLegacy decodes a /v1/completions body, reading choices[].index and
// choices[].text.
func ParseLegacy(body []byte) ([]Completion, error) {
	var resp legacyBody
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &MalformedResponseError{Reason: "could not decode completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &MalformedResponseError{Reason: "no choices in response"}
	}

	out := make([]Completion, 0, len(resp.Choices))
	for i, choice := range resp.Choices {
		if choice.Text == nil {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("choice %d has no text", i)}
		}
		out = append(out, Completion{Index: choice.Index, Text: *choice.Text})
	}
	return sortByIndex(out), nil
}

// ParseModelList decodes a /v1/models body into model ids, in response order.
func ParseModelList(body []byte) ([]string, error) {
	var list modelListBody
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &MalformedResponseError{Reason: "could not decode model list", Err: err}
	}
	if list.Data == nil {
		return nil, &MalformedResponseError{Reason: "no data in model list"}
	}

	ids := make([]string, 0, len(list.Data))
	for i, m := range list.Data {
		if m.ID == "" {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("model %d has no id", i)}
		}
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Texts extracts the texts of completions, keeping their order
func Texts(cs []Completion) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Text
	}
	return out
}

// Join concatenates texts with Separator between them
func Join(texts []string) string {
	return strings.Join(texts, Separator)
}

// Render joins texts and appends suffix once to the whole result
func Render(texts []string, suffix string) string {
	return Join(texts) + suffix
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// contentText reads content given as a string, as an array of parts, or null
func contentText(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("content is neither a string nor a list of parts: %w", err)
	}
	var b strings.Builder
	for _, part := range parts {
		if part.Type == openai.ChatMessagePartTypeText {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

func sortByIndex(cs []Completion) []Completion {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Index < cs[j].Index })
	return cs
}
