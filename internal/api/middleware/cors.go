package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS allows the configured dashboard origin to call the API from a
// browser. An empty or wildcard origin opens the API to any origin.
func CORS(dashboardURL string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}

	if dashboardURL == "" || dashboardURL == "*" {
		opts.AllowedOrigins = []string{"*"}
		return cors.Handler(opts)
	}

	opts.AllowedOrigins = dashboardOrigins(dashboardURL)
	opts.AllowCredentials = true
	return cors.Handler(opts)
}

// dashboardOrigins widens a localhost dashboard URL to the ports local
// dev servers commonly bind.
func dashboardOrigins(u string) []string {
	origins := []string{u}
	if strings.Contains(u, "localhost") || strings.Contains(u, "127.0.0.1") {
		origins = append(origins,
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		)
	}
	return origins
}
