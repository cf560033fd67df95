package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/hyoubkp/output"
)

// slowThreshold marks operations highlighted as slow.
const slowThreshold = 100 * time.Millisecond

// formatTimingTree writes the timing tree, for example:
//
//	run input.txt: 125ms
//	├─ load rules.yaml: 85ms
//	│  └─ include banks.yaml: 5ms
//	└─ process input: 40ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	duration := formatDuration(root.end.Sub(root.start))
	if styles != nil {
		_, _ = fmt.Fprintf(w, "%s: %s\n", styles.Keyword(root.name), duration)
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s\n", root.name, duration)
	}

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	elapsed := node.end.Sub(node.start)

	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	duration := formatDuration(elapsed)
	if styles != nil {
		duration = styles.Timing(duration, elapsed >= slowThreshold)
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", styles.Dim(prefix+branch), node.name, duration)
	} else {
		_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, node.name, duration)
	}

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatCounters writes one "name: value" line per counter.
func formatCounters(w io.Writer, order []string, counters map[string]int, styles *output.Styles) {
	for _, name := range order {
		if styles != nil {
			_, _ = fmt.Fprintf(w, "%s: %d\n", styles.Dim(name), counters[name])
		} else {
			_, _ = fmt.Fprintf(w, "%s: %d\n", name, counters[name])
		}
	}
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
