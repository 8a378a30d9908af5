package middleware

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// MaxBodyMiddleware caps request body size; MAX_BODY_BYTES overrides the
// 1 MiB default. Mini-program payloads are small JSON bodies; upload routes
// enforce their own larger cap and are exempt here.
func MaxBodyMiddleware(next http.Handler) http.Handler {
	max := int64(1 << 20)
	if s := os.Getenv("MAX_BODY_BYTES"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
			max = v
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/upload/") {
			r.Body = http.MaxBytesReader(w, r.Body, max)
		}
		next.ServeHTTP(w, r)
	})
}
