package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"airbnb-analyzer/utils"
)

// requestLogger logs one line per request through the application logger.
func requestLogger(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			l := logger.With("request_id", middleware.GetReqID(r.Context()))
			if status >= http.StatusInternalServerError {
				l.Error("[http] %s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(start))
				return
			}
			l.Info("[http] %s %s -> %d (%s, %d bytes)", r.Method, r.URL.Path, status, time.Since(start), ww.BytesWritten())
		})
	}
}
