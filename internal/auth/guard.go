package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stringerc/syncscript-gateway/internal/config"
	"github.com/stringerc/syncscript-gateway/internal/errors"
	"github.com/stringerc/syncscript-gateway/internal/logger"
	"github.com/stringerc/syncscript-gateway/internal/utils"
)

// Identity describes an authenticated caller
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// SessionResolver resolves an opaque bearer token to a caller identity
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// SupabaseResolver resolves sessions against the identity provider's user
// endpoint
type SupabaseResolver struct {
	cfg    config.SupabaseConfig
	client *http.Client
}

// NewSupabaseResolver creates a resolver for the configured identity provider
func NewSupabaseResolver(cfg config.SupabaseConfig) *SupabaseResolver {
	return &SupabaseResolver{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Resolve looks the token up at the identity provider. Every failure mode
// is returned as an opaque error: callers translate all of them to the
// same 401.
func (r *SupabaseResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	if err := r.cfg.CheckAuth(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", r.cfg.AnonKey)
	req.Header.Set(utils.HeaderAuthorization, "Bearer "+token)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("session lookup returned status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, err
	}
	if identity.UserID == "" {
		return nil, fmt.Errorf("session lookup returned no user")
	}
	return &identity, nil
}

// Guard decides whether an inbound user request may proceed
type Guard struct {
	resolver SessionResolver
}

// NewGuard creates a guard backed by the given resolver
func NewGuard(resolver SessionResolver) *Guard {
	return &Guard{resolver: resolver}
}

// Authorize resolves the request's bearer credential. On success it returns
// the caller identity; otherwise it writes a 401 and returns false, and the
// handler must stop. The response never distinguishes a malformed token
// from an unknown one.
func (g *Guard) Authorize(w http.ResponseWriter, r *http.Request) (*Identity, bool) {
	token := BearerToken(r.Header.Get(utils.HeaderAuthorization))
	if token == "" {
		errors.HandleError(w, errors.NewAuthenticationError(), http.StatusUnauthorized)
		return nil, false
	}

	identity, err := g.resolver.Resolve(r.Context(), token)
	if err != nil {
		logger.DebugCtx(r.Context(), "Session resolution failed", "error", err)
		errors.HandleError(w, errors.NewAuthenticationError(), http.StatusUnauthorized)
		return nil, false
	}
	return identity, true
}

// BearerToken extracts the credential from an Authorization header value
func BearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
