// Package accel probes locally attached accelerators.
package accel

import (
	"context"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"esgmonitor/internal/ports"
)

// NvidiaProbe reads total GPU memory via nvidia-smi. A missing binary or a
// failing query both mean "no accelerator".
type NvidiaProbe struct {
	logger *slog.Logger
}

var _ ports.AcceleratorProbe = (*NvidiaProbe)(nil)

// NewNvidiaProbe wires a component logger.
func NewNvidiaProbe(logger *slog.Logger) *NvidiaProbe {
	return &NvidiaProbe{logger: logger}
}

// MemoryGB returns the total memory of the first GPU in whole gigabytes,
// rounded up, or 0 when no usable device is found.
func (p *NvidiaProbe) MemoryGB(ctx context.Context) int {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=memory.total", "--format=csv,noheader,nounits").Output()
	if err != nil {
		if p.logger != nil {
			p.logger.Debug("no accelerator detected", "error", err)
		}
		return 0
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	mib, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || mib <= 0 {
		if p.logger != nil {
			p.logger.Debug("unreadable nvidia-smi output", "output", line)
		}
		return 0
	}

	return (mib + 1023) / 1024
}
