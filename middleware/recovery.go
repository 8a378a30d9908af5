package middleware

import (
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogMiddleware logs one line per request and response status.
func RequestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(rec, r)
		log.Printf("[http] %s %s -> %d", r.Method, r.URL.Path, rec.status)
	})
}

// RecoveryMiddleware recovers from handler panics and answers with a
// generic 500 envelope. The panic message only reaches the response body in
// development mode; otherwise it stays in the server log.
func RecoveryMiddleware(next http.Handler) http.Handler {
	dev := strings.ToLower(os.Getenv("ENV")) == "development"
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[panic] method=%s path=%s panic=%v\n%s", r.Method, r.URL.Path, rec, string(debug.Stack()))
				msg := "Internal server error"
				if dev {
					msg = "Internal server error (see server log)"
				}
				utils.Fail(w, http.StatusInternalServerError, msg)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
