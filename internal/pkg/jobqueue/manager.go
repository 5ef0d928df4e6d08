package jobqueue

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/coparrent/coparrent/internal/pkg/env"
	metrics "github.com/coparrent/coparrent/internal/pkg/metrics/counter"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue              *Queue
	cleanupTicker      *time.Ticker
	counterFlushTicker *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := envInt("JOB_WORKER_COUNT", 2)
		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	// Periodic ledger retention sweep
	cleanupInterval := time.Duration(envInt("LEDGER_CLEANUP_INTERVAL_HOURS", 24)) * time.Hour
	m.cleanupTicker = time.NewTicker(cleanupInterval)
	m.wg.Add(1)
	go m.cleanupWorker()

	// Counter flush worker (Redis -> DB) every 5 seconds
	m.counterFlushTicker = time.NewTicker(5 * time.Second)
	m.wg.Add(1)
	go m.counterFlushWorker()
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks")
	close(m.stopCh)
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}
	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}
	m.queue.Stop()
	m.running = false
	m.wg.Wait()
}

// EnqueueLedgerCleanup schedules a retention sweep with configured settings.
func (m *Manager) EnqueueLedgerCleanup() (*Job, error) {
	payload := LedgerCleanupJobPayload{
		RetentionDays: envInt("LEDGER_RETENTION_DAYS", DefaultLedgerRetentionDays),
		BatchSize:     envInt("LEDGER_CLEANUP_BATCH_SIZE", DefaultLedgerBatchSize),
	}
	return m.queue.EnqueueJob(JobTypeLedgerCleanup, payload.ToMap())
}

func (m *Manager) cleanupWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.cleanupTicker.C:
			if _, err := m.EnqueueLedgerCleanup(); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue ledger cleanup: %v", err)
			}
		}
	}
}

func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.counterFlushTicker.C:
			if err := metrics.FlushAll(); err != nil {
				log.Errorf("[JobQueue Manager] Counter flush failed: %v", err)
			}
		}
	}
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(env.GetEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return def
}
