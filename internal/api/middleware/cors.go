package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// allowedOrigin resolves the Access-Control-Allow-Origin value for origin,
// or "" when the origin is not allowed.
func (c CORSConfig) allowedOrigin(origin string) string {
	if lo.Contains(c.AllowedOrigins, "*") {
		if c.AllowCredentials {
			return origin
		}
		return "*"
	}
	if origin != "" && lo.Contains(c.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

func CORS(config CORSConfig) Middleware {
	return func(f http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			allowedOrigin := config.allowedOrigin(r.Header.Get("Origin"))
			w.Header().Add("Vary", "Origin")

			if allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
				if config.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
				if config.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
			}

			// Preflight requests stop here.
			if r.Method == http.MethodOptions {
				if allowedOrigin != "" {
					w.WriteHeader(http.StatusOK)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}

			f(w, r)
		}
	}
}
