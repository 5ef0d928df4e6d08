package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/coparrent/coparrent/internal/pkg/billing"
	"github.com/coparrent/coparrent/internal/pkg/database"
	"github.com/coparrent/coparrent/internal/pkg/s3archive"
)

const (
	DefaultLedgerRetentionDays = 90
	DefaultLedgerBatchSize     = 500
)

// processLedgerCleanupJob prunes finished ledger rows older than the retention
// window. When S3 archiving is configured, each batch is uploaded as JSONL
// before it is deleted; an upload failure aborts the sweep so nothing is lost.
func (q *Queue) processLedgerCleanupJob(ctx context.Context, job *Job) error {
	payload, err := LedgerCleanupJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid ledger cleanup payload: %w", err)
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = DefaultLedgerRetentionDays
	}
	if payload.BatchSize <= 0 {
		payload.BatchSize = DefaultLedgerBatchSize
	}

	repo := billing.NewRepository(database.GetDB())
	cutoff := time.Now().AddDate(0, 0, -payload.RetentionDays)

	var archiver *s3archive.Client
	cfg, err := s3archive.LoadConfig()
	if err != nil {
		return fmt.Errorf("archive config: %w", err)
	}
	if cfg.IsEnabled() {
		archiver, err = s3archive.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("archive client: %w", err)
		}
	}

	var total int64
	for {
		events, err := repo.ListProcessedBefore(cutoff, payload.BatchSize)
		if err != nil {
			return fmt.Errorf("list prunable events: %w", err)
		}
		if len(events) == 0 {
			break
		}

		if archiver != nil {
			key := cfg.GetObjectKey(time.Now())
			if _, err := archiver.ArchiveEvents(ctx, key, events); err != nil {
				return fmt.Errorf("archive batch: %w", err)
			}
		}

		ids := make([]string, 0, len(events))
		for _, ev := range events {
			ids = append(ids, ev.EventID)
		}
		deleted, err := repo.DeleteEvents(ids)
		if err != nil {
			return fmt.Errorf("delete batch: %w", err)
		}
		total += deleted

		if len(events) < payload.BatchSize {
			break
		}
	}

	log.Infof("[JobQueue] Ledger cleanup pruned %d rows older than %s", total, cutoff.Format(time.RFC3339))
	return nil
}
