package filewatcher

import (
	"time"

	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

// pendingChange is a path waiting to settle. Each timer delivers its own
// pendingChange, so a firing that lost a race with a newer change is
// recognizable and dropped.
type pendingChange struct {
	path    string
	created bool
	timer   *time.Timer
}

// debouncer coalesces create/write bursts per path. Not safe for concurrent
// use; only the watch loop calls it. Timers hand their entry back on settled.
type debouncer struct {
	settle  time.Duration
	pending map[string]*pendingChange
	settled chan *pendingChange
	quit    chan struct{}
}

func newDebouncer(settle time.Duration) *debouncer {
	return &debouncer{
		settle:  settle,
		pending: make(map[string]*pendingChange),
		settled: make(chan *pendingChange, 16),
		quit:    make(chan struct{}),
	}
}

// touch records a create or write on path and restarts its quiet period.
func (d *debouncer) touch(path string, created bool) {
	if p, ok := d.pending[path]; ok {
		if p.timer.Stop() {
			p.created = p.created || created
			p.timer.Reset(d.settle)
			return
		}
		// already fired and queued; that delivery is now stale
		created = created || p.created
	}

	p := &pendingChange{path: path, created: created}
	p.timer = time.AfterFunc(d.settle, func() {
		select {
		case d.settled <- p:
		case <-d.quit:
		}
	})
	d.pending[path] = p
}

// cancel forgets path. It reports whether a change was still pending.
func (d *debouncer) cancel(path string) bool {
	p, ok := d.pending[path]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, path)
	return true
}

// resolve turns a settled entry into an event. Stale entries, superseded
// or cancelled after their timer fired, yield false.
func (d *debouncer) resolve(p *pendingChange) (ports.FileEvent, bool) {
	if d.pending[p.path] != p {
		return ports.FileEvent{}, false
	}
	delete(d.pending, p.path)

	op := ports.FileModified
	if p.created {
		op = ports.FileCreated
	}
	return ports.FileEvent{Path: p.path, Operation: op}, true
}

// stop releases every timer. Callbacks blocked on settled return.
func (d *debouncer) stop() {
	close(d.quit)
	for _, p := range d.pending {
		p.timer.Stop()
	}
}
