package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/iconidentify/vidcard/internal/repository"
)

var startTime = time.Now()

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueStatter reports background job queue statistics.
type QueueStatter interface {
	Stats(ctx context.Context) (*repository.QueueStats, error)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store       Pinger
	queue       QueueStatter
	storagePath string
	logger      *slog.Logger
	cpu         cpuSampler
}

// NewHealthHandler creates a new health handler. storagePath is the
// directory holding the settings database, reported in Stats.
func NewHealthHandler(store Pinger, queue QueueStatter, storagePath string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:       store,
		queue:       queue,
		storagePath: storagePath,
		logger:      logger,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Error     string                 `json:"error,omitempty"`
	Queue     *repository.QueueStats `json:"queue,omitempty"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe. The settings store must answer.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "error",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Error:     "settings store unavailable",
		})
		return
	}

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if stats, err := h.queue.Stats(ctx); err == nil {
		resp.Queue = stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// SystemStats contains system resource statistics.
type SystemStats struct {
	Uptime         int64                  `json:"uptime_seconds"`
	UptimeHuman    string                 `json:"uptime_human"`
	MemAllocMB     int64                  `json:"mem_alloc_mb"`
	MemSysMB       int64                  `json:"mem_sys_mb"`
	MemHeapMB      int64                  `json:"mem_heap_mb"`
	NumGoroutines  int                    `json:"num_goroutines"`
	NumCPU         int                    `json:"num_cpu"`
	CPUPercent     float64                `json:"cpu_percent"`
	DiskUsedBytes  int64                  `json:"disk_used_bytes"`
	DiskFreeBytes  int64                  `json:"disk_free_bytes"`
	DiskTotalBytes int64                  `json:"disk_total_bytes"`
	DiskUsedPct    float64                `json:"disk_used_pct"`
	StoragePath    string                 `json:"storage_path"`
	StoreOK        bool                   `json:"store_ok"`
	Queue          *repository.QueueStats `json:"queue,omitempty"`
}

// Stats handles GET /api/v1/stats - system statistics.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(startTime)

	stats := SystemStats{
		Uptime:        int64(uptime.Seconds()),
		UptimeHuman:   formatUptime(uptime),
		MemAllocMB:    int64(m.Alloc / 1024 / 1024),
		MemSysMB:      int64(m.Sys / 1024 / 1024),
		MemHeapMB:     int64(m.HeapAlloc / 1024 / 1024),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		CPUPercent:    h.cpu.sample(),
		StoragePath:   h.storagePath,
		StoreOK:       h.store.Ping(r.Context()) == nil,
	}

	if h.storagePath != "" {
		stats.DiskTotalBytes, stats.DiskFreeBytes, stats.DiskUsedBytes, stats.DiskUsedPct = getDiskStats(h.storagePath)
	}

	if queue, err := h.queue.Stats(r.Context()); err == nil {
		stats.Queue = queue
	}

	writeJSON(w, http.StatusOK, stats)
}

// cpuSampler tracks process CPU time between polls.
type cpuSampler struct {
	mu       sync.Mutex
	lastCPU  time.Duration
	lastWall time.Time
}

// sample returns the process CPU usage since the previous call, capped
// at one core. The first call returns 0.
func (c *cpuSampler) sample() float64 {
	cpu, ok := processCPUTime()
	if !ok {
		return 0
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastWall.IsZero() {
		c.lastCPU, c.lastWall = cpu, now
		return 0
	}

	cpuDelta := cpu - c.lastCPU
	wallDelta := now.Sub(c.lastWall)
	c.lastCPU, c.lastWall = cpu, now

	if wallDelta <= 0 {
		return 0
	}
	pct := float64(cpuDelta) / float64(wallDelta) * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
