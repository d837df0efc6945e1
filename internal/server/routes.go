package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Public upload.
	mux.HandleFunc("POST /api/upload", s.handleUpload)

	// Operator endpoints.
	mux.HandleFunc("GET /api/admin/lookup", s.withAdminAuth(s.handleLookup))
	mux.HandleFunc("GET /api/admin/download", s.withAdminAuth(s.handleDownload))
	mux.HandleFunc("POST /api/admin/complete", s.withAdminAuth(s.handleComplete))
	mux.HandleFunc("POST /api/admin/cleanup", s.withAdminAuth(s.handleAdminCleanup))
	mux.HandleFunc("GET /api/admin/stats", s.withAdminAuth(s.handleAdminStats))

	return s.withCORS(s.withRequestLogging(mux))
}
