// Package observability reports process health for the feed server.
package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthStats is the snapshot served by the health endpoint.
type HealthStats struct {
	CPUPercent  float64 `json:"cpu_percent"`
	MemPercent  float32 `json:"mem_percent"`
	AllocMemMb  uint64  `json:"alloc_mem_mb"`
	NumGC       uint32  `json:"num_gc"`
	Goroutines  int     `json:"goroutines"`
	Subscribers int     `json:"subscribers"`
	CollectedAt string  `json:"collected_at"`
}

// SubscriberCounter reports how many live subscribers are registered.
type SubscriberCounter func() int

// HealthReporter samples its own process on a ticker and keeps the latest
// snapshot for the health endpoint. Safe for concurrent use.
type HealthReporter struct {
	log         *slog.Logger
	interval    time.Duration
	subscribers SubscriberCounter

	mu     sync.RWMutex
	latest HealthStats
}

func NewHealthReporter(log *slog.Logger, interval time.Duration, subscribers SubscriberCounter) *HealthReporter {
	return &HealthReporter{log: log, interval: interval, subscribers: subscribers}
}

// Run samples until the context is cancelled. Meant for a goroutine.
func (h *HealthReporter) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Context done, stopping health reporter")
			return nil
		case <-ticker.C:
			h.sample(proc)
		}
	}
}

// Stats returns the most recent snapshot.
func (h *HealthReporter) Stats() HealthStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

func (h *HealthReporter) sample(proc *process.Process) {
	stats := HealthStats{
		Goroutines:  runtime.NumGoroutine(),
		CollectedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	} else {
		h.log.Debug("Error while reading process cpu usage", "err", err)
	}
	if ram, err := proc.MemoryPercent(); err == nil {
		stats.MemPercent = ram
	} else {
		h.log.Debug("Error while reading process ram usage", "err", err)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats.AllocMemMb = mem.Alloc / 1024 / 1024
	stats.NumGC = mem.NumGC

	if h.subscribers != nil {
		stats.Subscribers = h.subscribers()
	}

	h.mu.Lock()
	h.latest = stats
	h.mu.Unlock()
}
