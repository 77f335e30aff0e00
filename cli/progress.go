package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	models "github.com/transcribee/whispercpp"
)

// newProgressPrinter returns a progress callback that redraws a single
// status line on w and ends it with a newline once the download is done.
func newProgressPrinter(w io.Writer) func(models.DownloadProgress) {
	var startTime time.Time
	var lastRender time.Time

	return func(p models.DownloadProgress) {
		now := time.Now()
		if startTime.IsZero() {
			startTime = now
		}

		if p.Done {
			renderProgress(w, p.BytesCompleted, p.BytesTotal, startTime)
			fmt.Fprintln(w)
			return
		}

		// Throttle redraws to 10 per second
		if now.Sub(lastRender) < 100*time.Millisecond {
			return
		}
		lastRender = now
		renderProgress(w, p.BytesCompleted, p.BytesTotal, startTime)
	}
}

// renderProgress renders the progress bar to the writer.
// Format: Downloading [============>                 ] 45% (5.2 MB/s, elapsed: 30s, remaining: 2m 15s)
// When total is unknown the bar is replaced by the byte count.
func renderProgress(w io.Writer, current, total int64, startTime time.Time) {
	elapsed := time.Since(startTime)

	var speed float64
	if elapsed.Seconds() > 0 && current > 0 {
		speed = float64(current) / elapsed.Seconds()
	}

	if total <= 0 {
		fmt.Fprintf(w, "\r\x1b[KDownloading %s (%s, elapsed: %s)",
			models.FormatSize(current), formatSpeed(speed), formatDuration(elapsed))
		return
	}

	pct := float64(current) / float64(total) * 100

	var remaining time.Duration
	if speed > 0 && current < total {
		remaining = time.Duration(float64(total-current)/speed) * time.Second
	}

	fmt.Fprintf(w, "\r\x1b[KDownloading [%s] %.0f%% (%s, elapsed: %s, remaining: %s)",
		progressBar(pct), pct, formatSpeed(speed), formatDuration(elapsed), formatDuration(remaining))
}

// progressBar draws a fixed-width bar for pct in [0, 100].
func progressBar(pct float64) string {
	const barWidth = 30
	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	switch {
	case filled >= barWidth:
		return strings.Repeat("=", barWidth)
	case filled > 0:
		return strings.Repeat("=", filled) + ">" + strings.Repeat(" ", barWidth-filled-1)
	default:
		return ">" + strings.Repeat(" ", barWidth-1)
	}
}

// formatSpeed formats bytes per second as KB/s or MB/s.
func formatSpeed(bytesPerSec float64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	if bytesPerSec >= MB {
		return fmt.Sprintf("%.1f MB/s", bytesPerSec/MB)
	}
	if bytesPerSec >= KB {
		return fmt.Sprintf("%.1f KB/s", bytesPerSec/KB)
	}
	return fmt.Sprintf("%.0f B/s", bytesPerSec)
}

// formatDuration formats a duration as human-readable text (e.g., "5s", "2m 30s", "1h 5m").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Round(time.Second)

	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60

	if hours > 0 {
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if mins > 0 {
		if secs > 0 {
			return fmt.Sprintf("%dm %ds", mins, secs)
		}
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}
