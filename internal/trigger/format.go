package trigger

import (
	"fmt"
	"strings"
	"time"
)

// FormatList renders triggers as a fixed-width table for CLI output.
func FormatList(triggers []Trigger) string {
	if len(triggers) == 0 {
		return "no triggers\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %-20s %-16s %-20s %-8s %-6s %s\n",
		"ID", "NAME", "CRON", "TIMEZONE", "ENABLED", "FIRES", "NEXT RUN")
	for _, tr := range triggers {
		next := "-"
		if tr.NextRunAt != nil {
			next = tr.NextRunAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(&b, "%-16s %-20s %-16s %-20s %-8t %-6d %s\n",
			tr.ID, truncateCol(tr.Name, 20), tr.CronExpression, tr.Timezone,
			tr.Enabled, tr.TriggerCount, next)
	}
	return b.String()
}

func truncateCol(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
