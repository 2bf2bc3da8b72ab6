package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// Skipper exempts a request from bearer auth. The server wires it to the
// health and metrics endpoints, which scrapers hit without credentials.
type Skipper func(r *http.Request) bool

// Middleware validates bearer tokens on freeze-history API requests and
// attaches the parsed claims to the request context for the handlers'
// scope checks.
type Middleware struct {
	Config  Config
	Skipper Skipper
}

func NewMiddleware(cfg Config, skipper Skipper) Middleware {
	return Middleware{Config: cfg, Skipper: skipper}
}

// Wrap rejects unauthenticated requests with the API's JSON error shape
// and forwards the rest with claims on the context.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := Parse(bearerToken(r), m.Config)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintf(w, `{"type":"unauthorized","detail":%q}`+"\n", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// bearerToken pulls the token out of the Authorization header; the scheme
// match is case-insensitive. Returns "" when no bearer credential is sent,
// which Parse reports as ErrMissingToken.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const scheme = "bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}
