//go:build !windows

package handler

import (
	"syscall"
	"time"
)

// getDiskStats returns disk usage statistics for the given path.
func getDiskStats(path string) (total, free, used int64, usedPct float64) {
	var statfs syscall.Statfs_t
	if err := syscall.Statfs(path, &statfs); err != nil {
		return 0, 0, 0, 0
	}
	total = int64(statfs.Blocks) * int64(statfs.Bsize)
	free = int64(statfs.Bavail) * int64(statfs.Bsize)
	used = total - free
	if total > 0 {
		usedPct = float64(used) / float64(total) * 100
	}
	return total, free, used, usedPct
}

// processCPUTime returns user plus system CPU time of this process.
func processCPUTime() (time.Duration, bool) {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0, false
	}
	user := time.Duration(rusage.Utime.Nano())
	sys := time.Duration(rusage.Stime.Nano())
	return user + sys, true
}
