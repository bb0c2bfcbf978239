// Package progress tracks the state of an ingestion run and fans
// snapshots out to subscribers. Updates are partial patches; fields a
// patch leaves nil keep their current value.
package progress

import (
	"sync"
	"time"
)

// State is a point-in-time snapshot of the ingestion pipeline.
type State struct {
	// Active is true while a run is in flight.
	Active bool `json:"active"`

	// Stage names the current pipeline step, e.g. "counting",
	// "extracting", "copying", "done".
	Stage string `json:"stage,omitempty"`

	// CurrentFile is the file being processed right now.
	CurrentFile string `json:"currentFile,omitempty"`

	// FilesDone and FilesTotal drive the percentage. FilesTotal is 0
	// until the counting pass finishes.
	FilesDone  int `json:"filesDone"`
	FilesTotal int `json:"filesTotal"`

	// Percent is FilesDone over FilesTotal, 0 when the total is unknown.
	Percent float64 `json:"percent"`

	// Errors counts files that failed and were skipped.
	Errors int `json:"errors"`

	// StartedAt is when the current run began, stamped when Active
	// flips true and held until the next run or a reset.
	StartedAt time.Time `json:"startTime"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch is a partial update to the state. Nil fields are left alone.
type Patch struct {
	Active      *bool
	Stage       *string
	CurrentFile *string
	FilesDone   *int
	FilesTotal  *int
	Errors      *int
}

// Tracker holds the current state and broadcasts every change. The
// zero value is not usable; construct with NewTracker.
type Tracker struct {
	mu    sync.RWMutex
	state State
	subs  map[chan State]struct{}
	clock func() time.Time
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{
		subs:  make(map[chan State]struct{}),
		clock: time.Now,
	}
}

// State returns the current snapshot.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Update applies a patch, recomputes the percentage and broadcasts the
// new snapshot.
func (t *Tracker) Update(p Patch) State {
	t.mu.Lock()

	if p.Active != nil {
		if *p.Active && !t.state.Active {
			t.state.StartedAt = t.clock()
		}
		t.state.Active = *p.Active
	}
	if p.Stage != nil {
		t.state.Stage = *p.Stage
	}
	if p.CurrentFile != nil {
		t.state.CurrentFile = *p.CurrentFile
	}
	if p.FilesDone != nil {
		t.state.FilesDone = *p.FilesDone
	}
	if p.FilesTotal != nil {
		t.state.FilesTotal = *p.FilesTotal
	}
	if p.Errors != nil {
		t.state.Errors = *p.Errors
	}

	if t.state.FilesTotal > 0 {
		t.state.Percent = float64(t.state.FilesDone) / float64(t.state.FilesTotal) * 100
	} else {
		t.state.Percent = 0
	}
	t.state.UpdatedAt = t.clock()

	snapshot := t.state
	t.mu.Unlock()

	t.broadcast(snapshot)
	return snapshot
}

// Reset returns the tracker to idle, broadcasting the final snapshot.
func (t *Tracker) Reset() State {
	t.mu.Lock()
	t.state = State{UpdatedAt: t.clock()}
	snapshot := t.state
	t.mu.Unlock()

	t.broadcast(snapshot)
	return snapshot
}

// Subscribe registers a listener for state snapshots. The returned
// cancel function unregisters it and closes the channel. Slow
// listeners miss intermediate snapshots rather than blocking updates.
func (t *Tracker) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 16)

	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		if _, ok := t.subs[ch]; ok {
			delete(t.subs, ch)
			close(ch)
		}
		t.mu.Unlock()
	}
	return ch, cancel
}

func (t *Tracker) broadcast(s State) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for ch := range t.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Bool, String and Int build patch fields inline.
func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }
func Int(v int) *int          { return &v }
