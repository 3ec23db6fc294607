package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stringerc/syncscript-gateway/internal/dispatch"
)

func TestTTSHandler_MissingText(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Field 'text' is required", decodeError(t, w).Error)
	assert.Zero(t, dispatcher.calls)
}

func TestTTSHandler_TextTooLong(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{
		"text": strings.Repeat("a", 2001),
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Field 'text' exceeds the 2000-character limit", decodeError(t, w).Error)
	assert.Zero(t, dispatcher.calls, "oversize text must be rejected before any upstream spend")
}

func TestTTSHandler_TextAtLimit(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind: dispatch.KindSuccess, Status: http.StatusOK, Body: []byte("audio"),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{
		"text": strings.Repeat("a", 2000),
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, dispatcher.calls)
}

func TestTTSHandler_MultibyteTextCountsRunes(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind: dispatch.KindSuccess, Status: http.StatusOK, Body: []byte("audio"),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	// 2000 three-byte runes: at the character limit, far over it in bytes
	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{
		"text": strings.Repeat("日", 2000),
	}))

	assert.Equal(t, http.StatusOK, w.Code, "the limit is characters, not bytes")
	assert.Equal(t, 1, dispatcher.calls)

	w = httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{
		"text": strings.Repeat("日", 2001),
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Field 'text' exceeds the 2000-character limit", decodeError(t, w).Error)
	assert.Equal(t, 1, dispatcher.calls)
}

func TestTTSHandler_SpeedOutOfRange(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]interface{}{
		"text":  "hello",
		"speed": 9.5,
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "Speed")
	assert.Zero(t, dispatcher.calls)
}

func TestTTSHandler_Success(t *testing.T) {
	audio := []byte{0xFF, 0xFB, 0x90, 0x00, 0x01}
	header := http.Header{}
	header.Set("Content-Type", "audio/mpeg")
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind:   dispatch.KindSuccess,
		Status: http.StatusOK,
		Header: header,
		Body:   audio,
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{"text": "good morning"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, audio, w.Body.Bytes())
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "5", w.Header().Get("Content-Length"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))

	assert.Equal(t, "https://tts.example.com/audio/speech", dispatcher.last.URL)
	assert.Equal(t, "Bearer tts-key", dispatcher.last.Headers["Authorization"])
	assert.Equal(t, 15*time.Second, dispatcher.last.Timeout)
}

func TestTTSHandler_ContentTypeFallback(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind:   dispatch.KindSuccess,
		Status: http.StatusOK,
		Header: http.Header{}, // upstream sent no Content-Type
		Body:   []byte("audio"),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{"text": "hello"}))

	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
}

func TestTTSHandler_DefaultsVoiceAndSpeed(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{
		Kind: dispatch.KindSuccess, Status: http.StatusOK, Body: []byte("audio"),
	}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{"text": "hello"}))
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Model string  `json:"model"`
		Input string  `json:"input"`
		Voice string  `json:"voice"`
		Speed float64 `json:"speed"`
	}
	require.NoError(t, json.Unmarshal(dispatcher.last.Body, &payload))
	assert.Equal(t, "tts-1", payload.Model)
	assert.Equal(t, "hello", payload.Input)
	assert.Equal(t, "alloy", payload.Voice)
	assert.Equal(t, 1.0, payload.Speed)
}

func TestTTSHandler_UpstreamTimeout(t *testing.T) {
	dispatcher := &stubDispatcher{result: dispatch.Result{Kind: dispatch.KindTimeout}}
	h := newTestHandlers(testConfig(), dispatcher)

	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{"text": "hello"}))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "TIMEOUT", decodeError(t, w).Code)
}

func TestTTSHandler_UnconfiguredUpstream(t *testing.T) {
	cfg := testConfig()
	cfg.TTS.APIKey = ""
	dispatcher := &stubDispatcher{}
	h := newTestHandlers(cfg, dispatcher)

	w := httptest.NewRecorder()
	h.TTSHandler(w, postJSON("/api/tts", map[string]string{"text": "hello"}))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "CONFIG_ERROR", resp.Code)
	assert.Contains(t, resp.Error, "TTS_API_KEY")
	assert.Zero(t, dispatcher.calls)
}
