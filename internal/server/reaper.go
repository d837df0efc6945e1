package server

import (
	"context"
	"time"
)

// StartReaper runs periodic expiry sweeps until ctx is cancelled. It
// returns immediately when the interval is zero or negative.
func (s *Server) StartReaper(ctx context.Context) {
	interval := s.reaperInterval
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.log().Info("reaper started", "interval", interval)
		for {
			select {
			case <-ctx.Done():
				s.log().Info("reaper stopped")
				return
			case <-ticker.C:
				result, err := s.service.Sweep(ctx, false)
				if err != nil {
					s.log().Error("reaper sweep failed", "error", err)
					continue
				}
				if result.ExpiredCount > 0 || result.BlobDeleteErrors > 0 {
					s.log().Info("reaper sweep complete",
						"expired", result.ExpiredCount,
						"blob_delete_errors", result.BlobDeleteErrors)
				}
			}
		}
	}()
}
