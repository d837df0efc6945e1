package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"xeroq/internal/blobstore"
	"xeroq/internal/models"
	"xeroq/internal/store"
)

const (
	adminTokenEnvKey  = "XEROQ_ADMIN_TOKEN"
	allowRemoteEnvKey = "XEROQ_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 60 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
)

// Options carries tunables the server takes from config.
type Options struct {
	TTL               time.Duration
	Limits            models.SizeLimits
	MultipartMemory   int64
	AllowedOrigins    []string
	AdminPasswordHash string
	ReaperInterval    time.Duration
}

// Server wraps HTTP handlers for the xeroq API.
type Server struct {
	addr              string
	store             *store.Store
	service           *JobService
	logger            *slog.Logger
	limits            models.SizeLimits
	multipartMemory   int64
	allowedOrigins    []string
	adminPasswordHash string
	adminToken        string
	reaperInterval    time.Duration
}

// New creates a new server instance.
func New(addr string, jobStore *store.Store, blobs blobstore.BlobStore, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	limits := opts.Limits
	if limits == (models.SizeLimits{}) {
		limits = models.DefaultSizeLimits()
	}
	multipartMemory := opts.MultipartMemory
	if multipartMemory <= 0 {
		multipartMemory = 8 << 20
	}

	return &Server{
		addr:              addr,
		store:             jobStore,
		service:           NewJobService(jobStore, blobs, opts.TTL, limits),
		logger:            logger,
		limits:            limits,
		multipartMemory:   multipartMemory,
		allowedOrigins:    opts.AllowedOrigins,
		adminPasswordHash: strings.TrimSpace(opts.AdminPasswordHash),
		adminToken:        strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
		reaperInterval:    opts.ReaperInterval,
	}
}

// Service exposes the job service, mainly for the reaper.
func (s *Server) Service() *JobService {
	return s.service
}

// ReaperInterval returns the configured sweep cadence; zero disables
// the background reaper.
func (s *Server) ReaperInterval() time.Duration {
	return s.reaperInterval
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
