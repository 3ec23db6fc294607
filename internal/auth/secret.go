package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/stringerc/syncscript-gateway/internal/config"
	"github.com/stringerc/syncscript-gateway/internal/errors"
	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

// SecretGuard gates scheduler-triggered endpoints with a shared secret
// instead of a per-user session. Whether a missing secret fails closed is
// an explicit configuration mode, not an emergent property of an
// empty-string comparison.
type SecretGuard struct {
	secret   string
	required bool
}

// NewSecretGuard creates a guard from the cron configuration
func NewSecretGuard(cfg config.CronConfig) *SecretGuard {
	return &SecretGuard{
		secret:   cfg.Secret,
		required: cfg.SecretRequired,
	}
}

// Authorize checks the shared secret. When no secret is configured and the
// required mode is off, the trigger passes; this mode exists for local
// development only and is logged loudly.
func (g *SecretGuard) Authorize(w http.ResponseWriter, r *http.Request) bool {
	if g.secret == "" {
		if g.required {
			errors.HandleError(w, errors.NewAuthenticationError(), http.StatusUnauthorized)
			return false
		}
		logger.WarnCtx(r.Context(), "Cron secret check skipped: no secret configured and CRON_SECRET_REQUIRED is false")
		return true
	}

	presented := BearerToken(r.Header.Get(utils.HeaderAuthorization))
	if subtle.ConstantTimeCompare([]byte(presented), []byte(g.secret)) != 1 {
		errors.HandleError(w, errors.NewAuthenticationError(), http.StatusUnauthorized)
		return false
	}
	return true
}
