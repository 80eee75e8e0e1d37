package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/cors"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Content-Type", "Authorization", "X-Requested-With"}
)

const corsMaxAge = 86400

// CORS sets the relay's CORS headers on every response. An allow-listed
// Origin is echoed back, anything else (including no Origin) gets "*".
// OPTIONS requests are answered here with 200 and no body.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	methods := strings.Join(corsMethods, ", ")
	headers := strings.Join(corsHeaders, ", ")
	maxAge := strconv.Itoa(corsMaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; ok && origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Max-Age", maxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// StrictCORS only grants allow-listed origins and never answers with a
// wildcard, so credentialed browser requests work as intended.
func StrictCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:       allowedOrigins,
		AllowedMethods:       corsMethods,
		AllowedHeaders:       corsHeaders,
		AllowCredentials:     true,
		MaxAge:               corsMaxAge,
		OptionsSuccessStatus: http.StatusOK,
	})
	return c.Handler
}
