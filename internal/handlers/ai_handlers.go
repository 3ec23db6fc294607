package handlers

import (
	"net/http"
	"time"

	"github.com/stringerc/syncscript-gateway/internal/dispatch"
	"github.com/stringerc/syncscript-gateway/internal/errors"
	"github.com/stringerc/syncscript-gateway/internal/lenientjson"
	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/prompt"
	"github.com/stringerc/syncscript-gateway/internal/translate"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

const serviceDeepSeek = "deepseek"

// ChatRequest is the chat proxy request body
type ChatRequest struct {
	Message  string           `json:"message"`
	Messages []prompt.Message `json:"messages"`
	Context  string           `json:"context"`
}

// InsightsRequest is the insights proxy request body; every field is optional
type InsightsRequest struct {
	Tasks     []interface{} `json:"tasks"`
	Goals     []interface{} `json:"goals"`
	TimeRange string        `json:"timeRange"`
}

// SuggestionsRequest is the suggestions proxy request body
type SuggestionsRequest struct {
	Context string        `json:"context"`
	Tasks   []interface{} `json:"tasks"`
	Goals   []interface{} `json:"goals"`
	Count   int           `json:"count" validate:"omitempty,gte=1,lte=10"`
}

// DataResponse is the success envelope for insights and suggestions
type DataResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
}

// chatCompletionPayload is the upstream chat-completion request body
type chatCompletionPayload struct {
	Model    string           `json:"model"`
	Messages []prompt.Message `json:"messages"`
}

// dispatchChat performs the single chat-completion dispatch shared by
// every text-generation endpoint
func (h *APIHandlers) dispatchChat(r *http.Request, endpoint string, messages []prompt.Message) (dispatch.Result, bool) {
	body, err := dispatch.JSONBody(chatCompletionPayload{
		Model:    h.Config.DeepSeek.Model,
		Messages: messages,
	})
	if err != nil {
		return dispatch.Result{}, false
	}

	start := time.Now()
	res := h.Dispatcher.Dispatch(r.Context(), dispatch.Request{
		Service:     serviceDeepSeek,
		URL:         h.Config.DeepSeek.BaseURL + "/chat/completions",
		ContentType: utils.ContentTypeJSON,
		Headers: map[string]string{
			utils.HeaderAuthorization: "Bearer " + h.Config.DeepSeek.APIKey,
		},
		Body:    body,
		Timeout: h.Config.DeepSeek.Timeout,
	})
	h.recordDispatch(r, endpoint, serviceDeepSeek, res, start)
	return res, true
}

// ChatHandler proxies a conversation turn to the chat-completion upstream
// @Summary      Chat proxy
// @Description  Forwards a user conversation turn to the chat-completion upstream and returns the public subset of the completion
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        request body ChatRequest true "Chat request"
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{} "Chat completion subset"
// @Failure      400 {object} errors.ErrorResponse "Missing message"
// @Failure      401 {object} errors.ErrorResponse "Unauthorized"
// @Failure      502 {object} errors.ErrorResponse "Upstream error"
// @Router       /api/ai/chat [post]
func (h *APIHandlers) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Guard.Authorize(w, r); !ok {
		return
	}

	var req ChatRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Message == "" && len(req.Messages) == 0 {
		errors.HandleError(w, errors.NewMissingFieldError("message"), http.StatusBadRequest)
		return
	}
	if !checkConfig(w, h.Config.DeepSeek.Check()) {
		return
	}

	messages := prompt.BuildChatMessages(req.Message, req.Messages, req.Context)
	res, ok := h.dispatchChat(r, "/api/ai/chat", messages)
	if !ok {
		errors.HandleError(w, errors.NewInternalError("Failed to build upstream request"), http.StatusInternalServerError)
		return
	}
	if res.Kind != dispatch.KindSuccess {
		translate.WriteUpstreamFailure(w, serviceDeepSeek, res)
		return
	}

	subset, err := translate.ChatCompletionSubset(res.Body)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Chat upstream returned malformed completion", "error", err)
		errors.HandleError(w, errors.NewUpstreamError(res.Status), http.StatusBadGateway)
		return
	}
	translate.WriteJSON(w, http.StatusOK, subset)
}

// InsightsHandler generates productivity insights from the caller's tasks
// and goals
// @Summary      Productivity insights
// @Description  Builds an analysis prompt from the caller's tasks and goals and returns the model's structured insights
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        request body InsightsRequest true "Insights request"
// @Success      200 {object} DataResponse "Insights payload"
// @Failure      502 {object} errors.ErrorResponse "Upstream error"
// @Router       /api/ai/insights [post]
func (h *APIHandlers) InsightsHandler(w http.ResponseWriter, r *http.Request) {
	var req InsightsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if !checkConfig(w, h.Config.DeepSeek.Check()) {
		return
	}

	messages := prompt.BuildInsightsMessages(req.Tasks, req.Goals, req.TimeRange)
	res, ok := h.dispatchChat(r, "/api/ai/insights", messages)
	if !ok {
		errors.HandleError(w, errors.NewInternalError("Failed to build upstream request"), http.StatusInternalServerError)
		return
	}
	if res.Kind != dispatch.KindSuccess {
		translate.WriteUpstreamFailure(w, serviceDeepSeek, res)
		return
	}

	content, err := translate.AssistantContent(res.Body)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Insights upstream returned malformed completion", "error", err)
		errors.HandleError(w, errors.NewUpstreamError(res.Status), http.StatusBadGateway)
		return
	}

	// The model is asked for JSON but not trusted to produce it; a
	// malformed reply degrades to a raw-text wrapper, never a 5xx
	insights := lenientjson.ObjectOrRaw(content)
	translate.WriteJSON(w, http.StatusOK, DataResponse{
		Success: true,
		Data: map[string]interface{}{
			"insights": insights,
			"model":    h.Config.DeepSeek.Model,
		},
	})
}

// SuggestionsHandler generates next-action suggestions
// @Summary      Action suggestions
// @Description  Builds a suggestion prompt from the caller's context and returns the model's suggestion list
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        request body SuggestionsRequest true "Suggestions request"
// @Success      200 {object} DataResponse "Suggestions payload"
// @Failure      400 {object} errors.ErrorResponse "Invalid count"
// @Failure      502 {object} errors.ErrorResponse "Upstream error"
// @Router       /api/ai/suggestions [post]
func (h *APIHandlers) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	var req SuggestionsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if !h.checkStruct(w, &req) {
		return
	}
	if !checkConfig(w, h.Config.DeepSeek.Check()) {
		return
	}

	messages := prompt.BuildSuggestionsMessages(req.Context, req.Tasks, req.Goals, req.Count)
	res, ok := h.dispatchChat(r, "/api/ai/suggestions", messages)
	if !ok {
		errors.HandleError(w, errors.NewInternalError("Failed to build upstream request"), http.StatusInternalServerError)
		return
	}
	if res.Kind != dispatch.KindSuccess {
		translate.WriteUpstreamFailure(w, serviceDeepSeek, res)
		return
	}

	content, err := translate.AssistantContent(res.Body)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Suggestions upstream returned malformed completion", "error", err)
		errors.HandleError(w, errors.NewUpstreamError(res.Status), http.StatusBadGateway)
		return
	}

	suggestions := lenientjson.ArrayOrEmpty(content)
	translate.WriteJSON(w, http.StatusOK, DataResponse{
		Success: true,
		Data: map[string]interface{}{
			"suggestions": suggestions,
			"model":       h.Config.DeepSeek.Model,
		},
	})
}
