package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/pipeline"
	"github.com/leonardotrapani/memoscribe/internal/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionRunning  = errors.New("session is still running")
)

// View is the JSON form of a session: its latest snapshot plus bookkeeping.
type View struct {
	ID      string    `json:"id"`
	Seq     int64     `json:"seq"`
	Done    bool      `json:"done"`
	Created time.Time `json:"created"`
	Dir     string    `json:"dir,omitempty"`
	pipeline.Snapshot
}

// Entry tracks one web session. Every published snapshot gets the next
// sequence number and wakes the watchers waiting on the changed channel.
type Entry struct {
	ID       string
	Created  time.Time
	Settings session.Settings

	mu      sync.Mutex
	seq     int64
	snap    pipeline.Snapshot
	changed chan struct{}
	done    bool
	result  *session.Result
	err     error
	cancel  context.CancelFunc
}

func newEntry(id string, settings session.Settings) *Entry {
	return &Entry{
		ID:       id,
		Created:  time.Now().UTC(),
		Settings: settings,
		snap:     pipeline.Snapshot{Phase: pipeline.PhaseSetup, Translate: settings.Translate},
		changed:  make(chan struct{}),
	}
}

// Observe implements pipeline.Observer.
func (e *Entry) Observe(s pipeline.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return
	}
	e.publishLocked(s)
}

func (e *Entry) publishLocked(s pipeline.Snapshot) {
	e.seq++
	e.snap = s
	close(e.changed)
	e.changed = make(chan struct{})
}

// finish publishes the final snapshot. Failures that happen outside the
// pipeline (unreadable audio, unwritable output) still end in the error phase.
func (e *Entry) finish(res *session.Result, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.snap
	if res != nil && res.Snapshot.Phase != "" {
		snap = res.Snapshot
	}
	if err != nil && snap.Phase != pipeline.PhaseError {
		snap.Phase = pipeline.PhaseError
		snap.Status = ""
		snap.Error = apierr.Message(err, e.Settings.UILanguage)
		snap.ErrorKind = apierr.KindOf(err).String()
	}
	snap.Running = 0

	e.result = res
	e.err = err
	e.done = true
	e.cancel = nil
	e.publishLocked(snap)
}

// View returns the current state and a channel closed on the next change.
func (e *Entry) View() (View, <-chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := View{ID: e.ID, Seq: e.seq, Done: e.done, Created: e.Created, Snapshot: e.snap}
	if e.result != nil {
		v.Dir = e.result.Dir
	}
	return v, e.changed
}

// Result returns the finished session, or ErrSessionRunning.
func (e *Entry) Result() (*session.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.done {
		return nil, ErrSessionRunning
	}
	return e.result, e.err
}

func (e *Entry) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Hub keeps the sessions of the web API in memory. When more than max
// sessions are stored the oldest finished ones are dropped.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Entry
	order    []string
	max      int
}

func NewHub(max int) *Hub {
	if max <= 0 {
		max = 50
	}
	return &Hub{sessions: make(map[string]*Entry), max: max}
}

func (h *Hub) Add(e *Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[e.ID] = e
	h.order = append(h.order, e.ID)
	h.evictLocked()
}

func (h *Hub) evictLocked() {
	for i := 0; len(h.sessions) > h.max && i < len(h.order); {
		id := h.order[i]
		e := h.sessions[id]
		if v, _ := e.View(); !v.Done {
			i++
			continue
		}
		delete(h.sessions, id)
		h.order = append(h.order[:i], h.order[i+1:]...)
	}
}

func (h *Hub) Get(id string) (*Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.sessions[id]
	return e, ok
}

// Delete drops a finished session.
func (h *Hub) Delete(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if v, _ := e.View(); !v.Done {
		return ErrSessionRunning
	}
	delete(h.sessions, id)
	for i, other := range h.order {
		if other == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return nil
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CancelAll cancels every running session.
func (h *Hub) CancelAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, e := range h.sessions {
		e.Cancel()
	}
}
