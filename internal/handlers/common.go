package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stringerc/syncscript-gateway/internal/audit"
	"github.com/stringerc/syncscript-gateway/internal/auth"
	"github.com/stringerc/syncscript-gateway/internal/config"
	"github.com/stringerc/syncscript-gateway/internal/dispatch"
	"github.com/stringerc/syncscript-gateway/internal/errors"
	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/monitoring"
)

// APIHandlers contains the dependencies needed for the user-facing API
// handlers. Everything here is read-only after construction.
type APIHandlers struct {
	Config     *config.Config
	Dispatcher dispatch.Dispatcher
	Guard      *auth.Guard
	Audit      *audit.Store
	validate   *validator.Validate
}

// NewAPIHandlers creates a new APIHandlers instance
func NewAPIHandlers(cfg *config.Config, dispatcher dispatch.Dispatcher, guard *auth.Guard, auditStore *audit.Store) *APIHandlers {
	return &APIHandlers{
		Config:     cfg,
		Dispatcher: dispatcher,
		Guard:      guard,
		Audit:      auditStore,
		validate:   validator.New(),
	}
}

// decodeJSON reads and decodes a request body into v. An empty body decodes
// as the zero value, since several endpoints treat every field as optional.
// Returns false after writing a 400 when the body is malformed.
func (h *APIHandlers) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		errors.HandleError(w, errors.NewValidationError("Failed to read request body"), http.StatusBadRequest)
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		errors.HandleError(w, errors.NewValidationError("Invalid JSON body"), http.StatusBadRequest)
		return false
	}
	return true
}

// checkStruct runs validator tags over a decoded request. Returns false
// after writing a field-specific 400.
func (h *APIHandlers) checkStruct(w http.ResponseWriter, v interface{}) bool {
	if err := h.validate.Struct(v); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			errors.HandleError(w,
				errors.NewValidationError("Field '"+fe.Field()+"' failed validation: "+fe.Tag()),
				http.StatusBadRequest)
			return false
		}
		errors.HandleError(w, errors.NewValidationError("Invalid request"), http.StatusBadRequest)
		return false
	}
	return true
}

// checkConfig turns a ConfigError into the 503 CONFIG_ERROR contract.
// Returns false after writing the response.
func checkConfig(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	logger.Error("Endpoint used with incomplete configuration", "error", err)
	errors.HandleError(w, errors.NewConfigurationError(err.Error()), http.StatusServiceUnavailable)
	return false
}

// clientStatusFor maps a dispatch outcome to the status the client will see
func clientStatusFor(res dispatch.Result) int {
	switch res.Kind {
	case dispatch.KindSuccess:
		return http.StatusOK
	case dispatch.KindHTTPError:
		return http.StatusBadGateway
	case dispatch.KindTimeout:
		return http.StatusGatewayTimeout
	case dispatch.KindNetworkFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// recordDispatch feeds the upstream outcome into metrics and the audit store
func (h *APIHandlers) recordDispatch(r *http.Request, endpoint, service string, res dispatch.Result, start time.Time) {
	monitoring.GetMetrics().RecordUpstreamOutcome(service, res.Kind.String())

	requestID, _ := r.Context().Value(logger.RequestIDKey).(string)
	correlationID, _ := r.Context().Value(logger.CorrelationIDKey).(string)

	h.Audit.Save(audit.Record{
		RequestID:       requestID,
		CorrelationID:   correlationID,
		Endpoint:        endpoint,
		Method:          r.Method,
		StatusCode:      clientStatusFor(res),
		UpstreamService: service,
		UpstreamOutcome: res.Kind.String(),
		UpstreamStatus:  res.Status,
		DurationMS:      time.Since(start).Milliseconds(),
	})
}
