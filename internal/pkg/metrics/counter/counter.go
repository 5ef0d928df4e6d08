package counter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coparrent/coparrent/internal/pkg/cache"
	"github.com/coparrent/coparrent/internal/pkg/database"
)

const (
	processedKey = "webhook:counters:processed"
	duplicateKey = "webhook:counters:duplicate"
	ignoredKey   = "webhook:counters:ignored"
	failedKey    = "webhook:counters:failed"
)

// AddProcessed increments the pending processed counter for an event type
func AddProcessed(eventType string) error {
	return incr(processedKey, eventType)
}

// AddDuplicate increments the pending duplicate counter for an event type
func AddDuplicate(eventType string) error {
	return incr(duplicateKey, eventType)
}

// AddIgnored increments the pending ignored counter for an event type
func AddIgnored(eventType string) error {
	return incr(ignoredKey, eventType)
}

// AddFailed increments the pending failed counter for an event type
func AddFailed(eventType string) error {
	return incr(failedKey, eventType)
}

func incr(redisKey, eventType string) error {
	ctx := context.Background()
	field := strings.TrimSpace(eventType)
	if field == "" {
		field = "unknown"
	}
	return cache.GetClient().HIncrBy(ctx, redisKey, field, 1).Err()
}

// FlushAll flushes all pending webhook counters to the database
func FlushAll() error {
	if err := flushHashToColumn(processedKey, "processed_count"); err != nil {
		return err
	}
	if err := flushHashToColumn(duplicateKey, "duplicate_count"); err != nil {
		return err
	}
	if err := flushHashToColumn(ignoredKey, "ignored_count"); err != nil {
		return err
	}
	return flushHashToColumn(failedKey, "failed_count")
}

// flushHashToColumn drains a Redis hash atomically and applies batched
// increments to the event_stats table. Uses RENAME to a temporary key for an
// atomic drain without losing in-flight increments.
func flushHashToColumn(redisKey, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	// Ensure cleanup of tmpKey even if later steps fail
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	db := database.GetDB()
	sql := fmt.Sprintf(
		"INSERT INTO event_stats (event_type, %s, created_at, updated_at) VALUES (?, ?, NOW(), NOW()) "+
			"ON DUPLICATE KEY UPDATE %s = %s + VALUES(%s), updated_at = NOW()",
		column, column, column, column,
	)
	for eventType, raw := range data {
		inc := strings.TrimSpace(raw)
		if inc == "" || inc == "0" {
			continue
		}
		if err := db.Exec(sql, eventType, inc).Error; err != nil {
			return err
		}
	}
	return nil
}
