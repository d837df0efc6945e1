package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"xeroq/internal/api"
)

func (s *Server) handleAdminCleanup(w http.ResponseWriter, r *http.Request) {
	var req api.CleanupRequest
	// A bare POST with no body is a valid full sweep request.
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeErrorReq(w, r, http.StatusBadRequest, classifyDecodeJSONError(err))
		return
	}
	if !req.DryRun && r.Header.Get("X-Confirm") != "true" {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("non-dry-run requires X-Confirm: true header"), ErrCodeMissingRequired))
		return
	}

	result, err := s.service.Sweep(r.Context(), req.DryRun)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.CleanupResponse{
		ExpiredCount:     result.ExpiredCount,
		BlobDeleteErrors: result.BlobDeleteErrors,
		DryRun:           result.DryRun,
	})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.Info(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.StatsResponse{
		TotalJobs:     info.TotalJobs,
		PendingJobs:   info.StatusCounts["pending"],
		CompletedJobs: info.StatusCounts["completed"],
	})
}
