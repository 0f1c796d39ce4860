package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sleepstars/gpto/internal/models"
)

// Options configures the mock completion API
type Options struct {
	// Token, when set, is required as the bearer credential
	Token string
	// Models is the list served by GET /v1/models
	Models []string
	// Reply produces the assistant text for a chat request; defaults to echoing the last message
	Reply func(req models.ChatRequest) string
}

// DefaultModels is served when Options.Models is empty
var DefaultModels = []string{"gpt-3.5-turbo", "gpt-4", "text-davinci-003"}

// NewRouter builds a gin engine emulating the OpenAI completion endpoints.
// Responses carry the usual extra fields (id, usage, timestamps).
func NewRouter(opts Options) *gin.Engine {
	if len(opts.Models) == 0 {
		opts.Models = DefaultModels
	}
	if opts.Reply == nil {
		opts.Reply = echoReply
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(authMiddleware(opts.Token))

	v1 := r.Group("/v1")
	v1.POST("/chat/completions", chatHandler(opts))
	v1.POST("/completions", completionsHandler())
	v1.GET("/models", modelsHandler(opts.Models))

	return r
}

func authMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+token {
			apiError(c, http.StatusUnauthorized, "invalid_request_error", "Incorrect API key provided")
			c.Abort()
			return
		}
		c.Next()
	}
}

func chatHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apiError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
			return
		}
		if len(req.Messages) == 0 {
			apiError(c, http.StatusBadRequest, "invalid_request_error", "messages must not be empty")
			return
		}
		for i, m := range req.Messages {
			if _, err := models.ParseRole(string(m.Role)); err != nil {
				apiError(c, http.StatusBadRequest, "invalid_request_error", fmt.Sprintf("messages[%d]: %v", i, err))
				return
			}
		}

		reply := opts.Reply(req)
		n := samples(req.N)
		choices := make([]gin.H, 0, n)
		for i := 0; i < n; i++ {
			choices = append(choices, gin.H{
				"index":         i,
				"message":       gin.H{"role": "assistant", "content": numbered(reply, i, n)},
				"logprobs":      nil,
				"finish_reason": "stop",
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"id":                 fmt.Sprintf("chatcmpl-%d", time.Now().UnixNano()),
			"object":             "chat.completion",
			"created":            time.Now().Unix(),
			"model":              req.Model,
			"system_fingerprint": "fp_mock",
			"choices":            choices,
			"usage":              usage(req.MaxTokens),
		})
	}
}

func completionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PromptRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apiError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
			return
		}

		n := samples(req.N)
		choices := make([]gin.H, 0, n)
		for i := 0; i < n; i++ {
			choices = append(choices, gin.H{
				"text":          numbered("completed: "+req.Prompt, i, n),
				"index":         i,
				"logprobs":      nil,
				"finish_reason": "stop",
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"id":      fmt.Sprintf("cmpl-%d", time.Now().UnixNano()),
			"object":  "text_completion",
			"created": time.Now().Unix(),
			"model":   req.Model,
			"choices": choices,
			"usage":   usage(req.MaxTokens),
		})
	}
}

func modelsHandler(ids []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := make([]gin.H, 0, len(ids))
		for _, id := range ids {
			data = append(data, gin.H{
				"id":       id,
				"object":   "model",
				"created":  1686935002,
				"owned_by": "mock",
			})
		}
		c.JSON(http.StatusOK, gin.H{"object": "list", "data": data})
	}
}

func apiError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"message": message,
			"type":    kind,
			"param":   nil,
			"code":    nil,
		},
	})
}

func echoReply(req models.ChatRequest) string {
	last := req.Messages[len(req.Messages)-1]
	return "echo: " + strings.TrimSpace(last.Content)
}

func samples(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func numbered(text string, i, n int) string {
	if n == 1 {
		return text
	}
	return fmt.Sprintf("%s (%d)", text, i+1)
}

func usage(maxTokens int) gin.H {
	return gin.H{
		"prompt_tokens":     3,
		"completion_tokens": maxTokens / 10,
		"total_tokens":      3 + maxTokens/10,
	}
}
