package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/hyoubkp/output"
)

func TestNoOpCollector(t *testing.T) {
	collector := noOpCollector{}

	timer := collector.Start("run")
	timer.Child("compile rules").End()
	timer.End()
	collector.Add("transactions", 3)

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestFromContextReturnsNoOpWhenMissing(t *testing.T) {
	collector := FromContext(context.Background())
	assert.True(t, collector != nil)
	_, ok := collector.(noOpCollector)
	assert.True(t, ok)
}

func TestWithCollector(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	retrieved, ok := FromContext(ctx).(*TimingCollector)
	assert.True(t, ok)
	assert.True(t, retrieved == collector)
}

func TestTimingCollectorHierarchical(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("run input.txt")
	load := root.Child("load rules.yaml")
	load.Child("include banks.yaml").End()
	load.End()
	root.Child("process input").End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, 4, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "run input.txt: "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ load rules.yaml: "))
	assert.True(t, strings.HasPrefix(lines[2], "│  └─ include banks.yaml: "))
	assert.True(t, strings.HasPrefix(lines[3], "└─ process input: "))
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, "ms"), "line %q", line)
	}
}

func TestTimingCollectorStartNestsUnderCurrent(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("run")
	inner := collector.Start("parse")
	inner.End()
	sibling := collector.Start("build")
	sibling.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	out := buf.String()
	assert.Contains(t, out, "├─ parse: ")
	assert.Contains(t, out, "└─ build: ")
}

func TestTimingCollectorCounters(t *testing.T) {
	collector := NewTimingCollector()
	collector.Add("transactions", 2)
	collector.Add("flagged", 1)
	collector.Add("transactions", 3)

	assert.Equal(t, 5, collector.Count("transactions"))
	assert.Equal(t, 0, collector.Count("directives"))

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, "transactions: 5\nflagged: 1\n", buf.String())
}

func TestTimingCollectorReportWithStyles(t *testing.T) {
	collector := NewTimingCollector()
	root := collector.Start("run")
	root.Child("process input").End()
	root.End()
	collector.Add("lines", 4)

	var buf bytes.Buffer
	// a bytes.Buffer is not a terminal, so styles render plain text
	collector.Report(&buf, output.NewStyles(&buf))
	out := buf.String()
	assert.Contains(t, out, "run: ")
	assert.Contains(t, out, "└─ process input: ")
	assert.Contains(t, out, "lines: 4\n")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{1 * time.Millisecond, "1ms"},
		{10 * time.Millisecond, "10ms"},
		{999 * time.Millisecond, "999ms"},
		{1 * time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.duration))
	}
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}
