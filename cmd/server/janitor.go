package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/tourism-portal/internal/booking"
	"github.com/iliyamo/tourism-portal/internal/config"
	"github.com/iliyamo/tourism-portal/internal/repository"
	"github.com/iliyamo/tourism-portal/internal/session"
)

// newJanitor schedules the periodic cleanup: idle session stores, expired
// booking drafts and, with the mysql store, stale client_storage rows.
func newJanitor(cfg config.Config, log *slog.Logger, mgr *session.Manager, flow *booking.Workflow, db *sql.DB) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cfg.JanitorSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		evicted := mgr.Sweep()
		purged := flow.PurgeExpired(ctx)
		var rows int64
		if db != nil && cfg.StoragePurge > 0 {
			n, err := repository.NewClientStorageRepo(db).PurgeOlderThan(ctx, cfg.StoragePurge)
			if err != nil {
				log.WarnContext(ctx, "janitor: purge client storage", "error", err)
			}
			rows = n
		}
		if evicted > 0 || purged > 0 || rows > 0 {
			log.InfoContext(ctx, "janitor: cleaned up", "sessions", evicted, "drafts", purged, "storage_rows", rows)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
