package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// timeRequests logs how long each request took
func (s *Server) timeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("Request completed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
