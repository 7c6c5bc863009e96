package offline_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/jobtracker/internal/offline"
)

func newGet(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	return req
}

func TestCache_PutAndMatch(t *testing.T) {
	cache := offline.NewStorage().Open("v1")
	resp := &offline.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte("hello"), Type: offline.ResponseTypeBasic}

	require.NoError(t, cache.Put(newGet(t, "http://app.test/hello.txt"), resp))

	got, ok := cache.Match(newGet(t, "http://app.test/hello.txt#section"))
	require.True(t, ok)
	assert.Equal(t, "hello", string(got.Body))

	// Stored entries are copies.
	resp.Body[0] = 'j'
	got.Body[0] = 'y'
	again, ok := cache.Match(newGet(t, "http://app.test/hello.txt"))
	require.True(t, ok)
	assert.Equal(t, "hello", string(again.Body))

	_, ok = cache.Match(newGet(t, "http://app.test/hello.txt?v=2"))
	assert.False(t, ok)
}

func TestCache_PutRejectsNonGet(t *testing.T) {
	cache := offline.NewStorage().Open("v1")
	req, err := http.NewRequest(http.MethodPost, "http://app.test/form", nil)
	require.NoError(t, err)

	err = cache.Put(req, &offline.Response{StatusCode: http.StatusOK, Header: http.Header{}})
	assert.ErrorIs(t, err, offline.ErrUnsupportedMethod)
}

func TestCache_AddAll(t *testing.T) {
	network := newFakeNetwork()
	cache := offline.NewStorage().Open("v1")

	urls := []*url.URL{
		{Scheme: "http", Host: "app.test", Path: "/index.html"},
		{Scheme: "http", Host: "app.test", Path: "/manifest.json"},
		{Scheme: "http", Host: "app.test", Path: "/index.html"},
	}
	require.NoError(t, cache.AddAll(context.Background(), network, urls))
	assert.Equal(t, []string{"http://app.test/index.html", "http://app.test/manifest.json"}, cache.Keys())

	network.setOnline(false)
	err := cache.AddAll(context.Background(), network, []*url.URL{{Scheme: "http", Host: "app.test", Path: "/other"}})
	assert.Error(t, err)
	assert.Len(t, cache.Keys(), 2)
}

func TestStorage(t *testing.T) {
	storage := offline.NewStorage()
	first := storage.Open("first")
	second := storage.Open("second")
	assert.Same(t, first, storage.Open("first"))
	assert.Equal(t, []string{"first", "second"}, storage.Keys())

	require.NoError(t, first.Put(newGet(t, "http://app.test/a"), &offline.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte("first")}))
	require.NoError(t, second.Put(newGet(t, "http://app.test/a"), &offline.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte("second")}))
	require.NoError(t, second.Put(newGet(t, "http://app.test/b"), &offline.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte("b")}))

	got, ok := storage.Match(newGet(t, "http://app.test/a"))
	require.True(t, ok)
	assert.Equal(t, "first", string(got.Body))

	assert.True(t, storage.Delete("first"))
	assert.False(t, storage.Delete("first"))
	assert.False(t, storage.Has("first"))
	assert.Equal(t, []string{"second"}, storage.Keys())

	got, ok = storage.Match(newGet(t, "http://app.test/a"))
	require.True(t, ok)
	assert.Equal(t, "second", string(got.Body))

	_, ok = storage.Match(newGet(t, "http://app.test/missing"))
	assert.False(t, ok)
}
