// Package cron implements the scheduler-triggered endpoints. Each handler
// verifies the shared secret, performs one upstream dispatch, logs a
// one-line structured summary, and returns a 200 JSON summary; only
// dispatch failures produce a non-200, so the scheduler never retries on
// cosmetic issues.
package cron

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/stringerc/syncscript-gateway/internal/audit"
	"github.com/stringerc/syncscript-gateway/internal/auth"
	"github.com/stringerc/syncscript-gateway/internal/config"
	"github.com/stringerc/syncscript-gateway/internal/dispatch"
	"github.com/stringerc/syncscript-gateway/internal/errors"
	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/monitoring"
	"github.com/stringerc/syncscript-gateway/internal/prompt"
	"github.com/stringerc/syncscript-gateway/internal/translate"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

const (
	serviceFunctions = "functions"
	serviceTwilio    = "twilio"
	serviceDeepSeek  = "deepseek"
)

// Handlers contains the dependencies for the cron trigger endpoints
type Handlers struct {
	Config     *config.Config
	Dispatcher dispatch.Dispatcher
	Guard      *auth.SecretGuard
	Audit      *audit.Store
}

// NewHandlers creates a new cron Handlers instance
func NewHandlers(cfg *config.Config, dispatcher dispatch.Dispatcher, guard *auth.SecretGuard, auditStore *audit.Store) *Handlers {
	return &Handlers{
		Config:     cfg,
		Dispatcher: dispatcher,
		Guard:      guard,
		Audit:      auditStore,
	}
}

// checkConfig turns a ConfigError into the 503 CONFIG_ERROR contract
func checkConfig(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	logger.Error("Cron trigger used with incomplete configuration", "error", err)
	errors.HandleError(w, errors.NewConfigurationError(err.Error()), http.StatusServiceUnavailable)
	return false
}

// recordDispatch feeds the upstream outcome into metrics and the audit store
func (h *Handlers) recordDispatch(r *http.Request, endpoint, service string, res dispatch.Result, start time.Time) {
	monitoring.GetMetrics().RecordUpstreamOutcome(service, res.Kind.String())

	requestID, _ := r.Context().Value(logger.RequestIDKey).(string)
	status := http.StatusOK
	if res.Kind != dispatch.KindSuccess {
		status = http.StatusBadGateway
	}

	h.Audit.Save(audit.Record{
		RequestID:       requestID,
		Endpoint:        endpoint,
		Method:          r.Method,
		StatusCode:      status,
		UpstreamService: service,
		UpstreamOutcome: res.Kind.String(),
		UpstreamStatus:  res.Status,
		DurationMS:      time.Since(start).Milliseconds(),
	})
}

// dispatchFunction invokes a named server-side function with the service key
func (h *Handlers) dispatchFunction(r *http.Request, endpoint, name string) dispatch.Result {
	start := time.Now()
	res := h.Dispatcher.Dispatch(r.Context(), dispatch.Request{
		Service:     serviceFunctions,
		URL:         h.Config.Supabase.FunctionURL(name),
		ContentType: utils.ContentTypeJSON,
		Headers: map[string]string{
			utils.HeaderAuthorization: "Bearer " + h.Config.Supabase.ServiceKey,
			"apikey":                  h.Config.Supabase.ServiceKey,
		},
		Body:    []byte(`{}`),
		Timeout: h.Config.Supabase.Timeout,
	})
	h.recordDispatch(r, endpoint, serviceFunctions, res, start)
	return res
}

// CleanupGuestsHandler triggers the guest-account cleanup job
// @Summary      Guest cleanup trigger
// @Description  Invokes the guest-account cleanup function and relays its summary
// @Tags         cron
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{} "Cleanup summary"
// @Failure      401 {object} errors.ErrorResponse "Bad shared secret"
// @Router       /api/cron/cleanup-guests [post]
func (h *Handlers) CleanupGuestsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.Guard.Authorize(w, r) {
		return
	}
	if !checkConfig(w, h.Config.Supabase.CheckFunctions()) {
		return
	}

	res := h.dispatchFunction(r, "/api/cron/cleanup-guests", "cleanup-guests")
	if res.Kind != dispatch.KindSuccess {
		translate.WriteUpstreamFailure(w, serviceFunctions, res)
		return
	}

	// Relay whatever summary fields the cleanup function reported
	summary := map[string]interface{}{}
	if err := json.Unmarshal(res.Body, &summary); err != nil {
		logger.WarnCtx(r.Context(), "Cleanup function returned non-JSON summary", "error", err)
		summary = map[string]interface{}{}
	}
	summary["success"] = true

	logger.InfoCtx(r.Context(), "Guest cleanup triggered", "upstream_status", res.Status)
	translate.WriteJSON(w, http.StatusOK, summary)
}

// ProcessEmailsHandler triggers the queued-email batch send
// @Summary      Email batch trigger
// @Description  Invokes the email queue processor and reports how many were processed
// @Tags         cron
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{} "Batch summary"
// @Failure      401 {object} errors.ErrorResponse "Bad shared secret"
// @Router       /api/cron/process-emails [post]
func (h *Handlers) ProcessEmailsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.Guard.Authorize(w, r) {
		return
	}
	if !checkConfig(w, h.Config.Supabase.CheckFunctions()) {
		return
	}

	res := h.dispatchFunction(r, "/api/cron/process-emails", "process-email-queue")
	if res.Kind != dispatch.KindSuccess {
		translate.WriteUpstreamFailure(w, serviceFunctions, res)
		return
	}

	var upstream struct {
		Processed int `json:"processed"`
	}
	if err := json.Unmarshal(res.Body, &upstream); err != nil {
		// Partial downstream detail is cosmetic; the trigger itself worked
		logger.WarnCtx(r.Context(), "Email processor returned non-JSON summary", "error", err)
	}

	logger.InfoCtx(r.Context(), "Email batch triggered", "processed", upstream.Processed)
	translate.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"processed":   upstream.Processed,
		"triggeredAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// WakeupCallHandler places the scheduled outbound wake-up call
// @Summary      Wake-up call trigger
// @Description  Places an outbound call with a spoken greeting and speech gathering
// @Tags         cron
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{} "Call summary"
// @Failure      401 {object} errors.ErrorResponse "Bad shared secret"
// @Router       /api/cron/wakeup-call [post]
func (h *Handlers) WakeupCallHandler(w http.ResponseWriter, r *http.Request) {
	if !h.Guard.Authorize(w, r) {
		return
	}
	if !checkConfig(w, h.Config.Twilio.Check()) {
		return
	}

	twilio := h.Config.Twilio
	form := url.Values{}
	form.Set("To", twilio.ToNumber)
	form.Set("From", twilio.FromNumber)
	form.Set("Twiml", BuildVoiceResponse(twilio.Greeting))

	basicAuth := base64.StdEncoding.EncodeToString([]byte(twilio.AccountSID + ":" + twilio.AuthToken))

	start := time.Now()
	res := h.Dispatcher.Dispatch(r.Context(), dispatch.Request{
		Service:     serviceTwilio,
		URL:         twilio.CallsURL(),
		ContentType: utils.ContentTypeFormEncoded,
		Headers: map[string]string{
			utils.HeaderAuthorization: "Basic " + basicAuth,
		},
		Body:    dispatch.FormBody(form),
		Timeout: twilio.Timeout,
	})
	h.recordDispatch(r, "/api/cron/wakeup-call", serviceTwilio, res, start)

	if res.Kind != dispatch.KindSuccess {
		translate.WriteUpstreamFailure(w, serviceTwilio, res)
		return
	}

	var call struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(res.Body, &call); err != nil {
		logger.WarnCtx(r.Context(), "Telephony upstream returned non-JSON call record", "error", err)
	}

	logger.InfoCtx(r.Context(), "Wake-up call placed", "call_sid", call.Sid)
	translate.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"callSid":     call.Sid,
		"phoneNumber": twilio.ToNumber,
		"triggeredAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// WeeklyReportHandler generates the scheduled weekly productivity report
// @Summary      Weekly report trigger
// @Description  Asks the text-generation upstream for the weekly report
// @Tags         cron
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{} "Report summary"
// @Failure      401 {object} errors.ErrorResponse "Bad shared secret"
// @Router       /api/cron/weekly-report [post]
func (h *Handlers) WeeklyReportHandler(w http.ResponseWriter, r *http.Request) {
	if !h.Guard.Authorize(w, r) {
		return
	}
	if !checkConfig(w, h.Config.DeepSeek.Check()) {
		return
	}

	weekOf := time.Now().UTC().Format("2006-01-02")
	body, err := dispatch.JSONBody(struct {
		Model    string           `json:"model"`
		Messages []prompt.Message `json:"messages"`
	}{
		Model:    h.Config.DeepSeek.Model,
		Messages: prompt.BuildWeeklyReportMessages(weekOf),
	})
	if err != nil {
		errors.HandleError(w, errors.NewInternalError("Failed to build upstream request"), http.StatusInternalServerError)
		return
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
	h.recordDispatch(r, "/api/cron/weekly-report", serviceDeepSeek, res, start)

	if res.Kind != dispatch.KindSuccess {
		translate.WriteUpstreamFailure(w, serviceDeepSeek, res)
		return
	}

	report, err := translate.AssistantContent(res.Body)
	if err != nil {
		logger.WarnCtx(r.Context(), "Report upstream returned malformed completion", "error", err)
		report = ""
	}

	logger.InfoCtx(r.Context(), "Weekly report generated", "report_length", len(report))
	translate.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"report":      report,
		"triggeredAt": time.Now().UTC().Format(time.RFC3339),
	})
}
