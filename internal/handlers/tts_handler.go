package handlers

import (
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/stringerc/syncscript-gateway/internal/dispatch"
	"github.com/stringerc/syncscript-gateway/internal/errors"
	"github.com/stringerc/syncscript-gateway/internal/translate"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

const serviceTTS = "tts"

// TTSRequest is the speech-synthesis proxy request body
type TTSRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed" validate:"omitempty,gte=0.25,lte=4"`
}

// ttsPayload is the upstream speech-synthesis request body
type ttsPayload struct {
	Model string  `json:"model"`
	Input string  `json:"input"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

// TTSHandler proxies text to the speech-synthesis upstream and streams the
// audio bytes back unchanged
// @Summary      Speech synthesis proxy
// @Description  Forwards text to the speech-synthesis upstream and returns the audio bytes
// @Tags         tts
// @Accept       json
// @Produce      audio/mpeg
// @Param        request body TTSRequest true "Synthesis request"
// @Success      200 {string} binary "Audio bytes, Content-Type per upstream"
// @Failure      400 {object} errors.ErrorResponse "Missing or oversize text"
// @Failure      504 {object} errors.ErrorResponse "Upstream timed out"
// @Router       /api/tts [post]
func (h *APIHandlers) TTSHandler(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		errors.HandleError(w, errors.NewMissingFieldError("text"), http.StatusBadRequest)
		return
	}
	maxLen := h.Config.TTS.MaxTextLength
	if utf8.RuneCountInString(req.Text) > maxLen {
		errors.HandleError(w,
			errors.NewValidationError(fmt.Sprintf("Field 'text' exceeds the %d-character limit", maxLen)),
			http.StatusBadRequest)
		return
	}
	if !h.checkStruct(w, &req) {
		return
	}
	if !checkConfig(w, h.Config.TTS.Check()) {
		return
	}

	voice := req.Voice
	if voice == "" {
		voice = h.Config.TTS.DefaultVoice
	}
	speed := req.Speed
	if speed == 0 {
		speed = h.Config.TTS.DefaultSpeed
	}

	body, err := dispatch.JSONBody(ttsPayload{
		Model: "tts-1",
		Input: req.Text,
		Voice: voice,
		Speed: speed,
	})
	if err != nil {
		errors.HandleError(w, errors.NewInternalError("Failed to build upstream request"), http.StatusInternalServerError)
		return
	}

	start := time.Now()
	res := h.Dispatcher.Dispatch(r.Context(), dispatch.Request{
		Service:     serviceTTS,
		URL:         h.Config.TTS.BaseURL + "/audio/speech",
		ContentType: utils.ContentTypeJSON,
		Headers: map[string]string{
			utils.HeaderAuthorization: "Bearer " + h.Config.TTS.APIKey,
		},
		Body:    body,
		Timeout: h.Config.TTS.Timeout,
	})
	h.recordDispatch(r, "/api/tts", serviceTTS, res, start)

	if res.Kind != dispatch.KindSuccess {
		translate.WriteUpstreamFailure(w, serviceTTS, res)
		return
	}

	translate.WriteBinary(w, http.StatusOK, res.Body,
		res.Header.Get(utils.HeaderContentType), utils.ContentTypeAudioMPEG)
}
