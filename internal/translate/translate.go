// Package translate converts classified upstream outcomes into the
// gateway's public response shapes. It is the only place responses are
// constructed: handlers validate and dispatch, the translator writes.
package translate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/stringerc/syncscript-gateway/internal/dispatch"
	"github.com/stringerc/syncscript-gateway/internal/errors"
	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

// WriteJSON writes a JSON payload with the given status
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to write JSON response", "error", err)
	}
}

// WriteBinary streams binary bytes through unchanged. The upstream's
// Content-Type is preserved, with a safe fallback when absent;
// Content-Length is explicit and the response is marked non-cacheable.
func WriteBinary(w http.ResponseWriter, status int, body []byte, contentType, fallbackType string) {
	if contentType == "" {
		contentType = fallbackType
	}
	w.Header().Set(utils.HeaderContentType, contentType)
	w.Header().Set(utils.HeaderContentLength, strconv.Itoa(len(body)))
	w.Header().Set(utils.HeaderCacheControl, utils.CacheControlNoStore)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Error("Failed to write binary response", "error", err)
	}
}

// WriteUpstreamFailure maps a non-success dispatch result onto the public
// error contract. Raw upstream bodies and error objects are logged
// server-side but never forwarded: the client sees only a stable code and
// a short message.
//
//	upstream non-2xx  -> 502 UPSTREAM_ERROR
//	deadline fired    -> 504 TIMEOUT
//	unreachable       -> 503 UNREACHABLE
func WriteUpstreamFailure(w http.ResponseWriter, service string, res dispatch.Result) {
	switch res.Kind {
	case dispatch.KindHTTPError:
		logger.Error("Upstream returned error status",
			"service", service,
			"status_code", res.Status,
			"response_body", string(res.Body),
		)
		errors.HandleError(w, errors.NewUpstreamError(res.Status), http.StatusBadGateway)
	case dispatch.KindTimeout:
		errors.HandleError(w, errors.NewTimeoutError(service), http.StatusGatewayTimeout)
	case dispatch.KindNetworkFailure:
		logger.Error("Upstream unreachable",
			"service", service,
			"error", res.Err,
		)
		errors.HandleError(w, errors.NewUnreachableError(service), http.StatusServiceUnavailable)
	default:
		errors.HandleError(w, errors.NewInternalError("Unexpected upstream outcome"), http.StatusInternalServerError)
	}
}

// ChatCompletionSubset extracts the fields of a chat-completion body that
// are part of the gateway's public contract, dropping upstream-internal
// fields.
func ChatCompletionSubset(body []byte) (map[string]interface{}, error) {
	var full map[string]interface{}
	if err := json.Unmarshal(body, &full); err != nil {
		return nil, fmt.Errorf("invalid chat completion body: %w", err)
	}

	subset := make(map[string]interface{})
	for _, field := range []string{"id", "object", "created", "model", "choices", "usage"} {
		if v, ok := full[field]; ok {
			subset[field] = v
		}
	}
	return subset, nil
}

// AssistantContent pulls the first choice's message content out of a
// chat-completion body
func AssistantContent(body []byte) (string, error) {
	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("invalid chat completion body: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
