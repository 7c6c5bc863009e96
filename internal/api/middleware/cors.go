package middleware

import "net/http"

const DefaultAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"

type CORSPolicy struct {
	AllowMethods string
	// PathMethods overrides AllowMethods for exact request paths.
	PathMethods map[string]string
}

// CORS sets permissive CORS headers and answers preflight requests with an empty 200.
func CORS(policy CORSPolicy) func(http.Handler) http.Handler {
	if policy.AllowMethods == "" {
		policy.AllowMethods = DefaultAllowMethods
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods := policy.AllowMethods
			if m, ok := policy.PathMethods[r.URL.Path]; ok {
				methods = m
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
