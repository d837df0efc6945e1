package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"xeroq/internal/blobstore"
	"xeroq/internal/config"
	"xeroq/internal/server"
	"xeroq/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the xeroq API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			blobs, err := openBlobStore(cfg)
			if err != nil {
				return err
			}

			srv := server.New(addr, st, blobs, server.Options{
				TTL:               time.Duration(cfg.TTLHours) * time.Hour,
				Limits:            cfg.SizeLimits(),
				MultipartMemory:   cfg.Uploads.MultipartMaxMemory,
				AllowedOrigins:    cfg.Server.AllowedOrigins,
				AdminPasswordHash: cfg.Server.AdminPasswordHash,
				ReaperInterval:    time.Duration(cfg.Server.ReaperIntervalMinutes) * time.Minute,
			}, logger)

			srv.StartReaper(cmd.Context())
			return srv.ListenAndServe()
		},
	}
}

func openBlobStore(cfg *config.Config) (blobstore.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		root := cfg.Storage.LocalRoot
		if root == "" {
			root = filepath.Join(filepath.Dir(cfg.DBPath), ".xeroq", "blobs")
		}
		return blobstore.NewLocalStore(root)
	case "s3":
		return blobstore.NewS3Store(blobstore.S3Config{
			Endpoint:  cfg.Storage.S3Endpoint,
			Region:    cfg.Storage.S3Region,
			Bucket:    cfg.Storage.S3Bucket,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
			UseSSL:    cfg.Storage.S3UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
