package monitoring

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessInfo reports on the running process.
type ProcessInfo struct {
	proc    *process.Process
	started time.Time
}

// NewProcessInfo inspects the current process. If the OS refuses, uptime is
// measured from this call and memory reads as zero.
func NewProcessInfo() *ProcessInfo {
	pi := &ProcessInfo{started: time.Now()}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Err(err).Msg("Process stats unavailable")
		return pi
	}
	pi.proc = p
	if ms, err := p.CreateTime(); err == nil && ms > 0 {
		pi.started = time.UnixMilli(ms)
	}
	return pi
}

// Uptime returns how long the process has been running.
func (pi *ProcessInfo) Uptime() time.Duration {
	return time.Since(pi.started)
}

// MemoryRSS returns the resident set size in bytes, or 0 if unknown.
func (pi *ProcessInfo) MemoryRSS() uint64 {
	if pi.proc == nil {
		return 0
	}
	mem, err := pi.proc.MemoryInfo()
	if err != nil || mem == nil {
		return 0
	}
	return mem.RSS
}
