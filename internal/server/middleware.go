package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"xeroq/internal/auth"
)

// withAdminAuth gates operator endpoints. When a bcrypt hash is
// configured, X-Admin-Token must verify against it; an env token is
// accepted as a plain secret. With neither configured the endpoints
// stay open for local use.
func (s *Server) withAdminAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminPasswordHash == "" && s.adminToken == "" {
			next(w, r)
			return
		}

		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("missing admin token")))
			return
		}

		if s.adminPasswordHash != "" && auth.VerifyPassword(s.adminPasswordHash, token) {
			next(w, r)
			return
		}
		if s.adminToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) == 1 {
			next(w, r)
			return
		}

		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("invalid admin token")))
	}
}

// withCORS applies the configured origin allow-list. No configured
// origins means no CORS headers at all.
func (s *Server) withCORS(next http.Handler) http.Handler {
	if len(s.allowedOrigins) == 0 {
		return next
	}

	allowed := make(map[string]struct{}, len(s.allowedOrigins))
	allowAll := false
	for _, origin := range s.allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			_, ok := allowed[origin]
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			if allowAll || ok {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Admin-Token, X-Confirm")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
