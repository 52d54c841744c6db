// services/backup_scheduler.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// test seam for time-dependent services
var nowFunc = time.Now

// BackupScheduler takes a full snapshot on the interval configured by the
// backupIntervalHours setting.
type BackupScheduler struct {
	store *Store
	log   zerolog.Logger
	cron  *cron.Cron
}

func NewBackupScheduler(store *Store, log zerolog.Logger) *BackupScheduler {
	return &BackupScheduler{store: store, log: log}
}

// Start reads the interval setting and schedules periodic snapshots. The
// interval is read once at startup; changing the setting takes effect on
// the next restart.
func (b *BackupScheduler) Start(ctx context.Context) error {
	hours := 24
	if setting, err := b.store.GetSetting(ctx, "backupIntervalHours"); err == nil && setting != nil {
		if h, err := strconv.Atoi(setting.Value); err == nil && h > 0 {
			hours = h
		}
	}

	b.cron = cron.New()
	_, err := b.cron.AddFunc(fmt.Sprintf("@every %dh", hours), func() {
		if _, err := b.store.CreateBackup(context.Background()); err != nil {
			b.log.Error().Err(err).Msg("scheduled backup failed")
		}
	})
	if err != nil {
		return err
	}

	b.cron.Start()
	b.log.Info().Int("intervalHours", hours).Msg("backup scheduler started")
	return nil
}

// Stop halts the scheduler.
func (b *BackupScheduler) Stop() {
	if b.cron != nil {
		b.cron.Stop()
	}
}
