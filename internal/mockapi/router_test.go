package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleepstars/gpto/internal/models"
	"github.com/sleepstars/gpto/internal/parser"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatCompletions(t *testing.T) {
	r := NewRouter(Options{Token: "secret"})

	w := do(t, r, http.MethodPost, "/v1/chat/completions", "secret",
		`{"model":"m","max_tokens":50,"messages":[{"role":"user","content":"hello"}],"n":2,"temperature":1,"top_p":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	completions, err := parser.ParseChat(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"echo: hello (1)", "echo: hello (2)"}, parser.Texts(completions))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw, "usage")
	assert.Equal(t, "m", raw["model"])
}

func TestChatCompletionsCustomReply(t *testing.T) {
	r := NewRouter(Options{Reply: func(req models.ChatRequest) string {
		return strings.Repeat("x", len(req.Messages))
	}})

	w := do(t, r, http.MethodPost, "/v1/chat/completions", "",
		`{"model":"m","messages":[{"role":"system","content":""},{"role":"user","content":"a"}],"n":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	completions, err := parser.ParseChat(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"xx"}, parser.Texts(completions))
}

func TestChatCompletionsRejectsBadRequests(t *testing.T) {
	r := NewRouter(Options{})

	w := do(t, r, http.MethodPost, "/v1/chat/completions", "", `{"model":"m","messages":[{"role":"tool","content":"x"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "role")

	w = do(t, r, http.MethodPost, "/v1/chat/completions", "", `{"model":"m","messages":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/v1/chat/completions", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnauthorized(t *testing.T) {
	r := NewRouter(Options{Token: "secret"})

	w := do(t, r, http.MethodGet, "/v1/models", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect API key provided")
}

func TestLegacyCompletions(t *testing.T) {
	r := NewRouter(Options{})

	w := do(t, r, http.MethodPost, "/v1/completions", "",
		`{"model":"text-davinci-003","prompt":"hi","max_tokens":10,"n":1,"temperature":1,"top_p":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	completions, err := parser.ParseLegacy(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"completed: hi"}, parser.Texts(completions))
}

func TestModels(t *testing.T) {
	r := NewRouter(Options{Models: []string{"a", "b"}})

	w := do(t, r, http.MethodGet, "/v1/models", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	ids, err := parser.ParseModelList(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}
