package middleware

import "net/http"

// CORS allows the listed origins; "*" allows any origin without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allow := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
			continue
		}
		allow[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				_, ok := allow[origin]
				if ok || wildcard {
					h := w.Header()
					h.Add("Vary", "Origin")
					h.Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID, X-Request-ID")
					h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
					h.Set("Access-Control-Expose-Headers", "X-Request-ID")
					if ok {
						h.Set("Access-Control-Allow-Origin", origin)
						h.Set("Access-Control-Allow-Credentials", "true")
					} else {
						h.Set("Access-Control-Allow-Origin", "*")
					}
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
