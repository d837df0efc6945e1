package server

import (
	"net/http"
	"time"

	"xeroq/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		Timestamp: time.Now().UTC(),
	}

	if err := s.store.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = "error"
		resp.Error = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	total, err := s.store.CountJobs(r.Context())
	if err != nil {
		resp.Status = "degraded"
		resp.Database = "error"
		resp.Error = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.TotalJobs = total

	s.writeJSON(w, http.StatusOK, resp)
}
