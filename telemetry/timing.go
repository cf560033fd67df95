package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/hyoubkp/output"
)

// TimingCollector collects a tree of timers and a set of counters.
type TimingCollector struct {
	root    *timerNode
	current *timerNode

	counters map[string]int
	order    []string

	mu sync.Mutex
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode
	parent   *timerNode
}

// NewTimingCollector creates a new timing collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{counters: make(map[string]int)}
}

// Start begins timing an operation.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{
		name:  name,
		start: time.Now(),
	}

	if c.root == nil {
		c.root = node
		c.current = node
	} else {
		node.parent = c.current
		c.current.children = append(c.current.children, node)
		c.current = node
	}

	return &timingTimer{
		collector: c,
		node:      node,
	}
}

// Add increments the named counter. Counters are reported in the order they
// were first touched.
func (c *TimingCollector) Add(name string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.counters[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counters[name] += delta
}

// Count returns the current value of the named counter.
func (c *TimingCollector) Count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

// Report writes the timing tree followed by the counters.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root != nil {
		formatTimingTree(w, c.root, styles)
	}
	formatCounters(w, c.order, c.counters, styles)
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

// End stops the timer.
func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.node.end = time.Now()

	if t.node.parent != nil {
		t.collector.current = t.node.parent
	}
}

// Child creates a timer nested under t regardless of which timer is current.
func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{
		name:   name,
		start:  time.Now(),
		parent: t.node,
	}

	t.node.children = append(t.node.children, node)

	return &timingTimer{
		collector: t.collector,
		node:      node,
	}
}
