package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stringerc/syncscript-gateway/internal/audit"
	"github.com/stringerc/syncscript-gateway/internal/auth"
	"github.com/stringerc/syncscript-gateway/internal/config"
	"github.com/stringerc/syncscript-gateway/internal/dispatch"
	"github.com/stringerc/syncscript-gateway/internal/errors"
	"github.com/stringerc/syncscript-gateway/internal/logger"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	if err := logger.Init(logger.DefaultConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	m.Run()
}

// stubDispatcher returns a canned result and records what was dispatched
type stubDispatcher struct {
	result dispatch.Result
	calls  int
	last   dispatch.Request
}

func (d *stubDispatcher) Dispatch(ctx context.Context, req dispatch.Request) dispatch.Result {
	d.calls++
	d.last = req
	return d.result
}

// allowResolver authenticates every token
type allowResolver struct{}

func (allowResolver) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	return &auth.Identity{UserID: "user-42", Email: "u@example.com"}, nil
}

// denyResolver rejects every token
type denyResolver struct{}

func (denyResolver) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	return nil, fmt.Errorf("unknown session")
}

func testConfig() *config.Config {
	return &config.Config{
		DeepSeek: config.DeepSeekConfig{
			APIKey:  "ds-key",
			BaseURL: "https://api.example.com",
			Model:   "test-model",
			Timeout: 30 * time.Second,
		},
		TTS: config.TTSConfig{
			APIKey:        "tts-key",
			BaseURL:       "https://tts.example.com",
			Timeout:       15 * time.Second,
			MaxTextLength: 2000,
			DefaultVoice:  "alloy",
			DefaultSpeed:  1.0,
		},
		Supabase: config.SupabaseConfig{
			URL:        "https://project.supabase.example",
			AnonKey:    "anon",
			ServiceKey: "service",
			Timeout:    10 * time.Second,
		},
	}
}

func newTestHandlers(cfg *config.Config, dispatcher dispatch.Dispatcher) *APIHandlers {
	return NewAPIHandlers(cfg, dispatcher, auth.NewGuard(allowResolver{}), audit.NewDisabledStore())
}

func postJSON(path string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer session-token")
	return req
}

func chatCompletionBody(content string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "test-model",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}}],
		"usage": {"total_tokens": 10},
		"system_fingerprint": "fp_internal"
	}`, content))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestChatHandler_Unauthorized(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := NewAPIHandlers(testConfig(), dispatcher, auth.NewGuard(denyResolver{}), audit.NewDisabledStore())

	w := httptest.NewRecorder()
	h.ChatHandler(w, postJSON("/api/ai/chat", map[string]string{"message": "hi"}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decodeError(t, w).Error)
	assert.Zero(t, dispatcher.calls, "rejected requests must never reach the upstream")
}

func TestChatHandler_NoToken(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newTestHandlers(testConfig(), dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", bytes.NewReader([]byte(`{"message":"hi"}`)))
	w := httptest.NewRecorder()
	h.ChatHandler(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, dispatcher.calls)
}

func TestChatHandler_MissingMessage(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.ChatHandler(w, postJSON("/api/ai/chat", map[string]string{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Field 'message' is required", decodeError(t, w).Error)
	assert.Zero(t, dispatcher.calls)
}

func TestChatHandler_MalformedBody(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newTestHandlers(testConfig(), dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set("Authorization", "Bearer session-token")
	w := httptest.NewRecorder()
	h.ChatHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON body", decodeError(t, w).Error)
	assert.Zero(t, dispatcher.calls)
}

func TestChatHandler_UnconfiguredUpstream(t *testing.T) {
	cfg := testConfig()
	cfg.DeepSeek.APIKey = ""
	dispatcher := &stubDispatcher{}
	h := newTestHandlers(cfg, dispatcher)

	w := httptest.NewRecorder()
	h.ChatHandler(w, postJSON("/api/ai/chat", map[string]string{"message": "hi"}))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "CONFIG_ERROR", resp.Code)
	assert.Contains(t, resp.Error, "DEEPSEEK_API_KEY")
	assert.Zero(t, dispatcher.calls)
}

func TestChatHandler_Success(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind:   dispatch.KindSuccess,
		Status: http.StatusOK,
		Body:   chatCompletionBody("Sure, here is your plan."),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.ChatHandler(w, postJSON("/api/ai/chat", map[string]string{"message": "plan my day"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, dispatcher.calls)
	assert.Equal(t, "https://api.example.com/chat/completions", dispatcher.last.URL)
	assert.Equal(t, "Bearer ds-key", dispatcher.last.Headers["Authorization"])
	assert.Equal(t, 30*time.Second, dispatcher.last.Timeout)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "chatcmpl-1", body["id"])
	assert.Equal(t, "test-model", body["model"])
	assert.Contains(t, body, "choices")
	assert.NotContains(t, body, "system_fingerprint")
}

func TestChatHandler_SendsModelAndMessages(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind: dispatch.KindSuccess, Status: http.StatusOK, Body: chatCompletionBody("ok"),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.ChatHandler(w, postJSON("/api/ai/chat", map[string]string{"message": "plan my day"}))
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(dispatcher.last.Body, &payload))
	assert.Equal(t, "test-model", payload.Model)
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "system", payload.Messages[0].Role)
	assert.Equal(t, "plan my day", payload.Messages[1].Content)
}

func TestChatHandler_UpstreamTimeout(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{Kind: dispatch.KindTimeout}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.ChatHandler(w, postJSON("/api/ai/chat", map[string]string{"message": "hi"}))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "TIMEOUT", decodeError(t, w).Code)
}

func TestChatHandler_UpstreamHTTPError(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind:   dispatch.KindHTTPError,
		Status: http.StatusTooManyRequests,
		Body:   []byte(`{"error": "quota exceeded for org-internal-1234"}`),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.ChatHandler(w, postJSON("/api/ai/chat", map[string]string{"message": "hi"}))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "UPSTREAM_ERROR", resp.Code)
	assert.NotContains(t, w.Body.String(), "org-internal-1234")
}

func TestInsightsHandler_StructuredReply(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind:   dispatch.KindSuccess,
		Status: http.StatusOK,
		Body:   chatCompletionBody(`{"summary": "strong week", "completionRate": 0.75}`),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.InsightsHandler(w, postJSON("/api/ai/insights", map[string]interface{}{
		"tasks": []interface{}{map[string]interface{}{"title": "a"}},
	}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp DataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "test-model", resp.Data["model"])

	insights, ok := resp.Data["insights"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "strong week", insights["summary"])
}

func TestInsightsHandler_ProseReplyDegradesToRaw(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind:   dispatch.KindSuccess,
		Status: http.StatusOK,
		Body:   chatCompletionBody("I could not produce structured insights."),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.InsightsHandler(w, postJSON("/api/ai/insights", map[string]interface{}{}))

	require.Equal(t, http.StatusOK, w.Code, "a malformed model reply is not a gateway failure")

	var resp DataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	insights, ok := resp.Data["insights"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "I could not produce structured insights.", insights["raw"])
}

func TestInsightsHandler_EmptyBody(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind: dispatch.KindSuccess, Status: http.StatusOK, Body: chatCompletionBody(`{"summary": "ok"}`),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/insights", nil)
	w := httptest.NewRecorder()
	h.InsightsHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "every insights field is optional")

	// The embedded snapshot shows zero counts, never "null"
	var payload struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(dispatcher.last.Body, &payload))
	require.Len(t, payload.Messages, 2)
	assert.Contains(t, payload.Messages[1].Content, "Tasks (0): []")
	assert.Contains(t, payload.Messages[1].Content, "Goals (0): []")
}

func TestInsightsHandler_IdenticalRequestsAreNotCached(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind: dispatch.KindSuccess, Status: http.StatusOK, Body: chatCompletionBody(`{"summary": "ok"}`),
	}}
	h := newTestHandlers(testConfig(), dispatcher)
	body := map[string]interface{}{"timeRange": "week"}

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.InsightsHandler(w, postJSON("/api/ai/insights", body))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2, dispatcher.calls, "identical requests must each reach the upstream")
}

func TestSuggestionsHandler_ArrayReply(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind:   dispatch.KindSuccess,
		Status: http.StatusOK,
		Body:   chatCompletionBody(`[{"title": "Take a break", "priority": "low"}]`),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.SuggestionsHandler(w, postJSON("/api/ai/suggestions", map[string]interface{}{"context": "afternoon"}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp DataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	suggestions, ok := resp.Data["suggestions"].([]interface{})
	require.True(t, ok)
	require.Len(t, suggestions, 1)
}

func TestSuggestionsHandler_ProseReplyDegradesToEmpty(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind:   dispatch.KindSuccess,
		Status: http.StatusOK,
		Body:   chatCompletionBody("nothing to suggest"),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.SuggestionsHandler(w, postJSON("/api/ai/suggestions", map[string]interface{}{}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp DataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	suggestions, ok := resp.Data["suggestions"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, suggestions)
}

func TestSuggestionsHandler_CountOutOfRange(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.SuggestionsHandler(w, postJSON("/api/ai/suggestions", map[string]interface{}{"count": 50}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "Count")
	assert.Zero(t, dispatcher.calls)
}
