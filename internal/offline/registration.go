package offline

import (
	"context"
	"log/slog"
	"sync"
)

const (
	EventWorkerState      = "WORKER_STATE"
	EventControllerChange = "CONTROLLER_CHANGE"

	// MessageSkipWaiting is the page message that forces a waiting worker active.
	MessageSkipWaiting = "skipWaiting"
)

// Notifier delivers worker events to connected pages.
type Notifier interface {
	Notify(event string, payload interface{})
}

type WorkerInfo struct {
	ID        string `json:"id"`
	State     State  `json:"state"`
	CacheName string `json:"cacheName"`
}

type RegistrationState struct {
	Active  *WorkerInfo `json:"active"`
	Waiting *WorkerInfo `json:"waiting"`
}

// Registration tracks which worker controls the pages and which one is
// waiting to take over.
type Registration struct {
	mu       sync.Mutex
	active   *Worker
	waiting  *Worker
	notifier Notifier
}

func NewRegistration(notifier Notifier) *Registration {
	return &Registration{notifier: notifier}
}

func (r *Registration) Active() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Registration) Waiting() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiting
}

// Update installs w and activates it once nothing holds it back: there is no
// active worker yet or w asked to skip waiting.
func (r *Registration) Update(ctx context.Context, w *Worker) error {
	if err := w.Install(ctx); err != nil {
		r.notifyState()
		return err
	}

	r.mu.Lock()
	if r.waiting != nil {
		r.waiting.markRedundant()
	}
	r.waiting = w
	hasActive := r.active != nil
	r.mu.Unlock()
	r.notifyState()

	if !hasActive || w.SkipWaitingRequested() {
		return r.activateWaiting(ctx)
	}
	return nil
}

// HandleMessage routes a page message. Unknown messages are ignored.
func (r *Registration) HandleMessage(ctx context.Context, data string) error {
	if data != MessageSkipWaiting {
		slog.Debug("ignoring worker message", "component", "offline.Registration", "message", data)
		return nil
	}

	waiting := r.Waiting()
	if waiting == nil {
		return nil
	}
	waiting.SkipWaiting()
	return r.activateWaiting(ctx)
}

func (r *Registration) activateWaiting(ctx context.Context) error {
	r.mu.Lock()
	w := r.waiting
	r.waiting = nil
	r.mu.Unlock()
	if w == nil {
		return nil
	}

	if err := w.Activate(ctx); err != nil {
		w.markRedundant()
		r.notifyState()
		return err
	}

	r.mu.Lock()
	previous := r.active
	r.active = w
	r.mu.Unlock()
	if previous != nil {
		previous.markRedundant()
	}

	slog.Info("worker activated", "component", "offline.Registration", "worker_id", w.ID(), "cache", w.CacheName())
	r.notifyState()
	r.notify(EventControllerChange, describe(w))
	return nil
}

func (r *Registration) State() RegistrationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RegistrationState{
		Active:  describe(r.active),
		Waiting: describe(r.waiting),
	}
}

func (r *Registration) notifyState() {
	r.notify(EventWorkerState, r.State())
}

func (r *Registration) notify(event string, payload interface{}) {
	if r.notifier == nil {
		return
	}
	r.notifier.Notify(event, payload)
}

func describe(w *Worker) *WorkerInfo {
	if w == nil {
		return nil
	}
	return &WorkerInfo{
		ID:        w.ID(),
		State:     w.State(),
		CacheName: w.CacheName(),
	}
}
