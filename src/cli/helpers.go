package cli

import (
	"fmt"
	"time"
)

// Helper functions for formatting output

func boolToYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
