package missed

import (
	"fmt"
	"sync"
)

// Marker persists the last calendar date the check ran.
type Marker interface {
	LastChecked() (string, error)
	MarkChecked(day string) error
}

// Gate runs a check at most once per local calendar day.
type Gate struct {
	marker Marker
	mu     sync.Mutex
}

func NewGate(marker Marker) *Gate {
	return &Gate{marker: marker}
}

// RunOnce calls fn unless the marker already holds today, then records today.
// A failing fn leaves the marker untouched so the next run retries.
func (g *Gate) RunOnce(today string, fn func() error) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	last, err := g.marker.LastChecked()
	if err != nil {
		return false, fmt.Errorf("read missed-check marker: %w", err)
	}
	if last == today {
		return false, nil
	}
	if err := fn(); err != nil {
		return true, err
	}
	if err := g.marker.MarkChecked(today); err != nil {
		return true, fmt.Errorf("write missed-check marker: %w", err)
	}
	return true, nil
}
