package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/baccarat/internal/config"
	"github.com/aristath/baccarat/internal/database"
	"github.com/aristath/baccarat/internal/di"
	"github.com/aristath/baccarat/internal/modules/sequence"
	"github.com/aristath/baccarat/internal/modules/shoe"
)

// SystemHandlers serves process and host status
type SystemHandlers struct {
	log       zerolog.Logger
	cfg       *config.Config
	container *di.Container
	startedAt time.Time
}

// NewSystemHandlers creates the system status handlers
func NewSystemHandlers(log zerolog.Logger, cfg *config.Config, container *di.Container) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		cfg:       cfg,
		container: container,
		startedAt: time.Now(),
	}
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status         string          `json:"status"`
	UptimeSeconds  float64         `json:"uptime_seconds"`
	GoVersion      string          `json:"go_version"`
	Goroutines     int             `json:"goroutines"`
	CPUPercent     float64         `json:"cpu_percent"`
	MemoryPercent  float64         `json:"memory_percent"`
	HeapAllocMB    float64         `json:"heap_alloc_mb"`
	HistoryBackend string          `json:"history_backend"`
	HistoryPath    string          `json:"history_path"`
	Database       *database.Stats `json:"database,omitempty"`
	Shoe           shoe.Info       `json:"shoe"`
	Model          sequence.Status `json:"model"`
	Subscribers    int             `json:"event_subscribers"`
	Timestamp      string          `json:"timestamp"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := SystemStatusResponse{
		Status:         "healthy",
		UptimeSeconds:  time.Since(h.startedAt).Seconds(),
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		HeapAllocMB:    float64(memStats.HeapAlloc) / 1024 / 1024,
		HistoryBackend: h.cfg.HistoryBackend,
		HistoryPath:    h.container.HistoryStore.Path(),
		Shoe:           h.container.GameService.ShoeInfo(),
		Model:          h.container.GameService.ModelStatus(),
		Subscribers:    h.container.EventBus.Subscribers(),
		Timestamp:      time.Now().Format(time.RFC3339),
	}

	if h.container.HistoryDB != nil {
		stats, err := h.container.HistoryDB.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get database statistics")
		} else {
			response.Database = stats
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// Short sampling interval keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
