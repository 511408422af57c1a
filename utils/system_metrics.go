package utils

import (
	"log/slog"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// GetSystemStats samples host CPU and memory usage. It does not block; the
// CPU reading is relative to the previous call.
func GetSystemStats() SystemStats {
	var stats SystemStats
	percentage, err := cpu.Percent(0, false)
	if err != nil {
		slog.Warn("cpu usage unavailable", "error", err)
	} else if len(percentage) > 0 {
		stats.CPUPercent = percentage[0]
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		slog.Warn("memory usage unavailable", "error", err)
	} else {
		stats.MemoryPercent = vm.UsedPercent
	}
	return stats
}
