package models

// BuildChat assembles a chat completion request from the sampling parameters
// and the messages to send. The message slice is copied.
func BuildChat(p Params, messages []Message) ChatRequest {
	msgs := make([]Message, len(messages))
	copy(msgs, messages)

	return ChatRequest{
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Messages:    msgs,
		N:           p.SampleCount,
		Temperature: p.Temperature,
		TopP:        p.TopP,
	}
}

// BuildSingle wraps one input text as a lone user message.
func BuildSingle(p Params, text string) ChatRequest {
	return BuildChat(p, []Message{{Role: RoleUser, Content: text}})
}

// BuildPrompt assembles a legacy plain-completion request.
func BuildPrompt(p Params, text string) PromptRequest {
	return PromptRequest{
		Model:       p.Model,
		Prompt:      text,
		MaxTokens:   p.MaxTokens,
		N:           p.SampleCount,
		Temperature: p.Temperature,
		TopP:        p.TopP,
	}
}
