package offline

import (
	"errors"
	"io"
	"net/http"
	"net/url"
)

// ResponseType mirrors how a response relates to the worker's origin.
type ResponseType string

const (
	ResponseTypeBasic ResponseType = "basic"
	ResponseTypeCORS  ResponseType = "cors"
	// ResponseTypeDefault marks responses synthesized by the worker itself.
	ResponseTypeDefault ResponseType = "default"
)

// maxBodyBytes caps what the worker buffers from the network.
var maxBodyBytes int64 = 32 << 20

// ErrIncompleteResponse is returned when storing a response whose body was
// too large to buffer.
var ErrIncompleteResponse = errors.New("offline: response body exceeds the buffer limit")

// Response is an HTTP response that can be cached and replayed. Body holds
// the buffered bytes; a body over the buffer limit keeps its unread rest
// and can be written once but never cached.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Type       ResponseType

	rest io.ReadCloser
}

// Complete reports whether Body holds the whole response body.
func (r *Response) Complete() bool {
	return r.rest == nil
}

// Close releases the unread rest of an incomplete response.
func (r *Response) Close() error {
	if r.rest == nil {
		return nil
	}
	err := r.rest.Close()
	r.rest = nil
	return err
}

var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func (r *Response) Clone() *Response {
	body := make([]byte, len(r.Body))
	copy(body, r.Body)
	return &Response{
		StatusCode: r.StatusCode,
		Header:     r.Header.Clone(),
		Body:       body,
		Type:       r.Type,
	}
}

// Write replays the response onto w.
func (r *Response) Write(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	for _, h := range hopHeaders {
		w.Header().Del(h)
	}
	w.Header().Del("Content-Length")

	w.WriteHeader(r.StatusCode)
	if _, err := w.Write(r.Body); err != nil {
		r.Close()
		return err
	}
	if r.rest == nil {
		return nil
	}

	defer r.Close()
	_, err := io.Copy(w, r.rest)
	return err
}

// readResponse buffers resp and classifies it against origin. A body over
// maxBodyBytes yields an incomplete response that owns resp.Body.
func readResponse(resp *http.Response, origin *url.URL) (*Response, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		resp.Body.Close()
		return nil, err
	}

	var rest io.ReadCloser
	if int64(len(body)) > maxBodyBytes {
		rest = resp.Body
	} else {
		resp.Body.Close()
	}

	typ := ResponseTypeCORS
	final := resp.Request
	if final == nil || sameOrigin(final.URL, origin) {
		typ = ResponseTypeBasic
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		Type:       typ,
		rest:       rest,
	}, nil
}

func offlineResponse() *Response {
	return &Response{
		StatusCode: http.StatusServiceUnavailable,
		Header:     http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
		Body:       []byte("Offline"),
		Type:       ResponseTypeDefault,
	}
}

func sameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Scheme == b.Scheme && a.Host == b.Host
}
