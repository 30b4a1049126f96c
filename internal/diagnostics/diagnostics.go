// Package diagnostics runs the background sampling loop that reports
// process resource usage and store/metric snapshots, re-homing the
// teacher's gopsutil-backed INFO command into a periodic log line since
// spec scope has no INFO command to attach it to.
package diagnostics

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/akashmaji946/respkv/internal/logging"
	"github.com/akashmaji946/respkv/internal/metrics"
	"github.com/akashmaji946/respkv/internal/store"
)

// Interval is how often the sampling loop logs a snapshot.
const Interval = 30 * time.Second

// Run samples process RSS/CPU and the metrics registry every Interval
// until ctx is canceled.
func Run(ctx context.Context, log *logging.Logger, reg *metrics.Registry, s *store.Store) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("diagnostics: could not attach to own process", zap.Error(err))
		proc = nil
	}

	ticker := time.NewTicker(Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample(log, reg, s, proc)
		}
	}
}

func sample(log *logging.Logger, reg *metrics.Registry, s *store.Store, proc *process.Process) {
	reg.StoreKeys.Set(float64(s.Len()))

	snap, err := reg.Gather()
	if err != nil {
		log.Warn("diagnostics: gather failed", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Float64("connections_received", snap.ConnectionsReceived),
		zap.Float64("commands_executed", snap.CommandsExecuted),
		zap.Float64("expired_keys", snap.ExpiredKeys),
		zap.Float64("store_keys", snap.StoreKeys),
	}

	if proc != nil {
		if rss, err := proc.MemoryInfo(); err == nil && rss != nil {
			fields = append(fields, zap.Uint64("rss_bytes", rss.RSS))
		}
		if cpuPct, err := proc.CPUPercent(); err == nil {
			fields = append(fields, zap.Float64("cpu_percent", cpuPct))
		}
	}

	log.Info("diagnostics snapshot", fields...)
}
