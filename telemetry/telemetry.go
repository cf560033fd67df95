// Package telemetry collects a tree of operation timings and a set of named
// counters for one run.
//
// The collector travels in a context, so instrumented code does not change
// its signature and pays nothing when no collector is installed:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("run input.txt")
//	rules := timer.Child("compile rules")
//	// ...
//	rules.End()
//	telemetry.FromContext(ctx).Add("transactions", 1)
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/hyoubkp/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector records timings and counters.
type Collector interface {
	// Start begins timing an operation. The first operation started becomes
	// the root; later ones nest under the innermost running operation.
	Start(name string) Timer

	// Add increments the named counter by delta.
	Add(name string, delta int)

	// Report writes the collected data to w. styles may be nil for plain text.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation's timing.
type Timer interface {
	// End stops the timer.
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector stored in ctx, or one that discards
// everything.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
