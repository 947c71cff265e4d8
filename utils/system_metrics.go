package utils

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

type HostStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
}

// GetCPUUsage returns the CPU usage since the previous call as a percentage.
// A zero interval keeps it non-blocking; the first call reports 0.
func GetCPUUsage(ctx context.Context) float64 {
	percentage, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		log.WithError(err).Debug("error getting CPU usage")
		return 0
	}
	if len(percentage) > 0 {
		return percentage[0]
	}
	return 0
}

func GetHostStats(ctx context.Context) HostStats {
	stats := HostStats{CPUPercent: GetCPUUsage(ctx)}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		log.WithError(err).Debug("error getting memory usage")
		return stats
	}
	stats.MemoryPercent = vm.UsedPercent
	stats.MemoryUsedMB = vm.Used / 1024 / 1024
	return stats
}
