package middleware

import (
	"net/http"

	"github.com/stringerc/syncscript-gateway/internal/utils"
)

// CORSMiddleware adds permissive CORS headers and answers preflight
// requests. OPTIONS always gets a 204, regardless of auth state, before any
// other processing.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(utils.HeaderAccessControlAllowOrigin, utils.CORSAllowOriginAll)
		w.Header().Set(utils.HeaderAccessControlAllowMethods, utils.CORSAllowMethodsStd)
		w.Header().Set(utils.HeaderAccessControlAllowHeaders, utils.CORSAllowHeadersStd)
		w.Header().Set(utils.HeaderAccessControlMaxAge, utils.CORSMaxAgeOneDay)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PostOnly rejects any method other than POST with a 405 before the
// handler (and its auth guard) runs. OPTIONS never reaches here: the CORS
// middleware answers it first.
func PostOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set(utils.HeaderAllow, utils.CORSAllowMethodsStd)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}
