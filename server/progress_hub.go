package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"packvault/logger"
)

// progressJob tracks one pipeline run's progress for its subscribers.
type progressJob struct {
	mu   sync.Mutex
	last int
	done bool
	subs []chan int
}

// ProgressHub fans pipeline progress out to websocket subscribers.
// Late subscribers immediately receive the latest value.
type ProgressHub struct {
	mu   sync.Mutex
	jobs map[string]*progressJob
}

// NewProgressHub creates an empty hub.
func NewProgressHub() *ProgressHub {
	return &ProgressHub{jobs: make(map[string]*progressJob)}
}

// Create registers a job before its pipeline starts.
func (h *ProgressHub) Create(jobID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.jobs[jobID]; !ok {
		h.jobs[jobID] = &progressJob{}
	}
}

// Publish pushes a new percentage to every subscriber of the job.
func (h *ProgressHub) Publish(jobID string, percent int) {
	h.mu.Lock()
	job, ok := h.jobs[jobID]
	h.mu.Unlock()
	if !ok {
		return
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	if percent < job.last {
		percent = job.last
	}
	job.last = percent
	for _, sub := range job.subs {
		select {
		case sub <- percent:
		default: // a slow subscriber never blocks the pipeline
		}
	}
}

// Finish closes all subscriber channels and forgets the job.
func (h *ProgressHub) Finish(jobID string) {
	h.mu.Lock()
	job, ok := h.jobs[jobID]
	delete(h.jobs, jobID)
	h.mu.Unlock()
	if !ok {
		return
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	job.done = true
	for _, sub := range job.subs {
		close(sub)
	}
	job.subs = nil
}

// Subscribe attaches to a job, returning a channel of percentages and
// an unsubscribe func. Returns false when the job is unknown.
func (h *ProgressHub) Subscribe(jobID string) (<-chan int, func(), bool) {
	h.mu.Lock()
	job, ok := h.jobs[jobID]
	h.mu.Unlock()
	if !ok {
		return nil, nil, false
	}

	ch := make(chan int, 16)
	job.mu.Lock()
	if job.done {
		job.mu.Unlock()
		return nil, nil, false
	}
	job.subs = append(job.subs, ch)
	last := job.last
	job.mu.Unlock()

	if last > 0 {
		ch <- last
	}

	cancel := func() {
		job.mu.Lock()
		defer job.mu.Unlock()
		for i, sub := range job.subs {
			if sub == ch {
				job.subs = append(job.subs[:i], job.subs[i+1:]...)
				break
			}
		}
	}
	return ch, cancel, true
}

var progressUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ProgressFeedHandler streams a pipeline run's progress over a
// websocket until the run finishes.
func (h *APIHandler) ProgressFeedHandler(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job"]

	ch, cancel, ok := h.progress.Subscribe(jobID)
	if !ok {
		http.Error(w, "Unknown progress job", http.StatusNotFound)
		return
	}
	defer cancel()

	conn, err := progressUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("progress websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	for percent := range ch {
		if err := conn.WriteJSON(map[string]int{"percent": percent}); err != nil {
			logger.Debug("progress subscriber dropped", logger.ErrorField(err))
			return
		}
	}
}
