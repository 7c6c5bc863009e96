// Package offline implements the cache-first worker that keeps the web app
// usable without a network connection.
package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateParsed     State = "parsed"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateRedundant  State = "redundant"
)

const DefaultRootDocument = "/index.html"

var (
	ErrInvalidState = errors.New("offline: invalid worker state")
	ErrNoOrigin     = errors.New("offline: origin must be an absolute URL")
	ErrNoCacheName  = errors.New("offline: cache name is required")
)

type Options struct {
	CacheName    string
	StaticAssets []string
	Origin       *url.URL
	Network      Network
	// SkipWaitingOnInstall activates the worker as soon as it is installed.
	SkipWaitingOnInstall bool
	RootDocument         string
}

// Worker pre-caches the app shell and answers GET requests cache-first.
type Worker struct {
	id      string
	opts    Options
	storage *Storage

	mu          sync.RWMutex
	state       State
	skipWaiting bool
}

func NewWorker(storage *Storage, opts Options) (*Worker, error) {
	if opts.CacheName == "" {
		return nil, ErrNoCacheName
	}
	if opts.Origin == nil || !opts.Origin.IsAbs() {
		return nil, ErrNoOrigin
	}
	if opts.Network == nil {
		opts.Network = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.RootDocument == "" {
		opts.RootDocument = DefaultRootDocument
	}

	return &Worker{
		id:      uuid.NewString(),
		opts:    opts,
		storage: storage,
		state:   StateParsed,
	}, nil
}

func (w *Worker) ID() string {
	return w.id
}

func (w *Worker) CacheName() string {
	return w.opts.CacheName
}

func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// transition moves the worker from one of from to to.
func (w *Worker) transition(to State, from ...State) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, s := range from {
		if w.state == s {
			w.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidState, w.state, to)
}

func (w *Worker) markRedundant() {
	w.mu.Lock()
	w.state = StateRedundant
	w.mu.Unlock()
}

// Install pre-caches the static assets. A failed install leaves the worker
// redundant and the cache untouched.
func (w *Worker) Install(ctx context.Context) error {
	if err := w.transition(StateInstalling, StateParsed); err != nil {
		return err
	}

	urls := make([]*url.URL, 0, len(w.opts.StaticAssets))
	for _, asset := range w.opts.StaticAssets {
		u, err := w.resolve(asset)
		if err != nil {
			w.markRedundant()
			return fmt.Errorf("invalid static asset %q: %w", asset, err)
		}
		urls = append(urls, u)
	}

	slog.Info("caching static assets", "component", "offline.Worker", "cache", w.opts.CacheName, "count", len(urls))
	if err := w.storage.Open(w.opts.CacheName).AddAll(ctx, w.opts.Network, urls); err != nil {
		w.markRedundant()
		return fmt.Errorf("install failed: %w", err)
	}

	if err := w.transition(StateInstalled, StateInstalling); err != nil {
		return err
	}
	if w.opts.SkipWaitingOnInstall {
		w.SkipWaiting()
	}
	return nil
}

// SkipWaiting asks the registration to activate this worker without waiting
// for the previous one to be released.
func (w *Worker) SkipWaiting() {
	w.mu.Lock()
	w.skipWaiting = true
	w.mu.Unlock()
}

func (w *Worker) SkipWaitingRequested() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.skipWaiting
}

// Activate deletes every cache other than the worker's own.
func (w *Worker) Activate(ctx context.Context) error {
	if err := w.transition(StateActivating, StateInstalled); err != nil {
		return err
	}

	for _, name := range w.storage.Keys() {
		if err := ctx.Err(); err != nil {
			w.markRedundant()
			return err
		}
		if name != w.opts.CacheName {
			w.storage.Delete(name)
			slog.Info("deleted stale cache", "component", "offline.Worker", "cache", name)
		}
	}

	return w.transition(StateActivated, StateActivating)
}

// Intercepts reports whether the worker answers req. API calls and non-GET
// requests always go to the network.
func (w *Worker) Intercepts(req *http.Request) bool {
	if req.Method != http.MethodGet {
		return false
	}
	return !strings.Contains(req.URL.String(), "/api/")
}

// Fetch answers req from the caches, then the network, then the offline
// fallback.
func (w *Worker) Fetch(ctx context.Context, req *http.Request) *Response {
	target := w.absolute(req.URL)

	if cached, ok := w.storage.matchURL(target); ok {
		return cached
	}

	resp, err := w.fetchNetwork(ctx, req, target)
	if err != nil {
		slog.Debug("network fetch failed", "component", "offline.Worker", "url", target.String(), "error", err)
		return w.fallback(req)
	}

	if resp.StatusCode == http.StatusOK && resp.Type == ResponseTypeBasic && resp.Complete() {
		w.storage.Open(w.opts.CacheName).store(cacheKey(target), resp.Clone())
	}
	return resp
}

func (w *Worker) fetchNetwork(ctx context.Context, req *http.Request, target *url.URL) (*Response, error) {
	out, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	out.Header = req.Header.Clone()
	for _, h := range hopHeaders {
		out.Header.Del(h)
	}

	resp, err := w.opts.Network.Do(out)
	if err != nil {
		return nil, err
	}
	return readResponse(resp, w.opts.Origin)
}

func (w *Worker) fallback(req *http.Request) *Response {
	if isNavigation(req) {
		root, err := w.resolve(w.opts.RootDocument)
		if err == nil {
			if cached, ok := w.storage.matchURL(root); ok {
				return cached
			}
		}
	}
	return offlineResponse()
}

func (w *Worker) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	return w.opts.Origin.ResolveReference(ref), nil
}

// absolute maps a request URL onto the worker's origin.
func (w *Worker) absolute(u *url.URL) *url.URL {
	if u.IsAbs() {
		return u
	}
	return w.opts.Origin.ResolveReference(&url.URL{
		Path:     u.Path,
		RawPath:  u.RawPath,
		RawQuery: u.RawQuery,
	})
}

func isNavigation(req *http.Request) bool {
	if mode := req.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}
