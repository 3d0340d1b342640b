package output

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// SystemBootTime reads the boot time from /proc/stat on fs.
func SystemBootTime(fs afero.Fs) (time.Time, error) {
	file, err := fs.Open("/proc/stat")
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open /proc/stat: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "btime ") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				bootTimeSec, err := strconv.ParseInt(fields[1], 10, 64)
				if err != nil {
					return time.Time{}, fmt.Errorf("failed to parse btime: %w", err)
				}
				return time.Unix(bootTimeSec, 0), nil
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return time.Time{}, fmt.Errorf("error reading /proc/stat: %w", err)
	}

	return time.Time{}, fmt.Errorf("btime not found in /proc/stat")
}

// Anchor returns the wall-clock time of the first traced event. The tracer
// stamps events with nanoseconds since boot, so the boot time of the
// analysing host is used when it precedes the trace; otherwise the trace is
// placed to end at now.
func Anchor(fs afero.Fs, base, end int64, now time.Time) time.Time {
	fallback := now.Add(-time.Duration(end))
	boot, err := SystemBootTime(fs)
	if err != nil {
		return fallback
	}
	anchor := boot.Add(time.Duration(base))
	if anchor.Add(time.Duration(end)).After(now) {
		return fallback
	}
	return anchor
}
