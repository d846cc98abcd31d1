package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument assigns a request id, logs the request and records metrics
// under the route label.
func (s *Server) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r.Body = http.MaxBytesReader(rec, r.Body, maxBodyBytes)
		next(rec, r)

		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(route, r.Method, rec.status, elapsed)

		entry := s.logger.WithFields(logrus.Fields{
			"request_id": reqID,
			"method":     r.Method,
			"route":      route,
			"status":     rec.status,
			"latency_ms": elapsed.Milliseconds(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request served")
		}
	})
}
