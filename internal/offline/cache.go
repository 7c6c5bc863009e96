package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

var ErrUnsupportedMethod = errors.New("offline: only GET requests can be cached")

// Network performs requests the cache cannot answer. *http.Client satisfies it.
type Network interface {
	Do(req *http.Request) (*http.Response, error)
}

// Cache is a named request to response store.
type Cache struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*Response
	keys    []string
}

func newCache(name string) *Cache {
	return &Cache{
		name:    name,
		entries: make(map[string]*Response),
	}
}

func (c *Cache) Name() string {
	return c.name
}

// Match returns a copy of the response stored for req.
func (c *Cache) Match(req *http.Request) (*Response, bool) {
	if req.Method != http.MethodGet {
		return nil, false
	}
	return c.matchKey(cacheKey(req.URL))
}

func (c *Cache) matchKey(key string) (*Response, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resp, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return resp.Clone(), true
}

// Put stores a copy of resp under req, replacing any previous entry.
func (c *Cache) Put(req *http.Request, resp *Response) error {
	if req.Method != http.MethodGet {
		return ErrUnsupportedMethod
	}
	if !resp.Complete() {
		return ErrIncompleteResponse
	}

	c.store(cacheKey(req.URL), resp.Clone())
	return nil
}

func (c *Cache) store(key string, resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, resp)
}

func (c *Cache) putLocked(key string, resp *Response) {
	if _, exists := c.entries[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.entries[key] = resp
}

// Keys lists cached URLs in insertion order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// AddAll fetches every URL and stores the responses. Nothing is stored unless
// every fetch returns 200.
func (c *Cache) AddAll(ctx context.Context, network Network, urls []*url.URL) error {
	fetched := make(map[string]*Response, len(urls))
	order := make([]string, 0, len(urls))

	for _, u := range urls {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return fmt.Errorf("failed to build request for %s: %w", u, err)
		}

		resp, err := network.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", u, err)
		}

		buffered, err := readResponse(resp, u)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", u, err)
		}
		if !buffered.Complete() {
			buffered.Close()
			return fmt.Errorf("failed to fetch %s: %w", u, ErrIncompleteResponse)
		}
		if buffered.StatusCode != http.StatusOK {
			return fmt.Errorf("failed to fetch %s: status %d", u, buffered.StatusCode)
		}

		key := cacheKey(u)
		if _, dup := fetched[key]; !dup {
			order = append(order, key)
		}
		fetched[key] = buffered
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range order {
		c.putLocked(key, fetched[key])
	}
	return nil
}

func cacheKey(u *url.URL) string {
	k := *u
	k.Fragment = ""
	k.RawFragment = ""
	return k.String()
}

// Storage holds the named caches of one origin.
type Storage struct {
	mu     sync.RWMutex
	caches map[string]*Cache
	order  []string
}

func NewStorage() *Storage {
	return &Storage{caches: make(map[string]*Cache)}
}

// Open returns the cache called name, creating it when missing.
func (s *Storage) Open(name string) *Cache {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.caches[name]; ok {
		return c
	}
	c := newCache(name)
	s.caches[name] = c
	s.order = append(s.order, name)
	return c
}

func (s *Storage) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.caches[name]
	return ok
}

// Keys lists cache names in creation order.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Delete removes the cache called name and reports whether it existed.
func (s *Storage) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.caches[name]; !ok {
		return false
	}
	delete(s.caches, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Match searches every cache in creation order.
func (s *Storage) Match(req *http.Request) (*Response, bool) {
	if req.Method != http.MethodGet {
		return nil, false
	}
	return s.matchURL(req.URL)
}

func (s *Storage) matchURL(u *url.URL) (*Response, bool) {
	s.mu.RLock()
	caches := make([]*Cache, 0, len(s.order))
	for _, name := range s.order {
		caches = append(caches, s.caches[name])
	}
	s.mu.RUnlock()

	key := cacheKey(u)
	for _, c := range caches {
		if resp, ok := c.matchKey(key); ok {
			return resp, true
		}
	}
	return nil, false
}
