// Package backdrop fetches and decodes page images in the background.
package backdrop

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/example/grademark/internal/logging"
)

// ErrNotRequested is returned by Image for a page that was never requested.
var ErrNotRequested = errors.New("background not requested")

// Fetcher opens the bytes behind a page location.
type Fetcher interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, location string) (io.ReadCloser, error)

func (f FetcherFunc) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return f(ctx, location)
}

// DefaultFetcher reads http and https locations with Client and anything
// else as a local file path or file URL.
type DefaultFetcher struct {
	Client *http.Client
}

func (f DefaultFetcher) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return f.get(ctx, location)
		case "file":
			return os.Open(u.Path)
		}
	}
	return os.Open(location)
}

func (f DefaultFetcher) get(ctx context.Context, location string) (io.ReadCloser, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", location, resp.Status)
	}
	return resp.Body, nil
}

// Decode reads a PNG, JPEG, GIF, WebP or BMP image.
func Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}
	logging.Logger().Debug("page image decoded", "format", format, "bounds", img.Bounds().String())
	return img, nil
}

type entry struct {
	done chan struct{}
	img  image.Image
	err  error
}

// Loader fetches each requested page image once, in its own goroutine.
// It is safe for concurrent use.
type Loader struct {
	ctx   context.Context
	fetch Fetcher

	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup
}

// NewLoader returns a loader whose fetches are bounded by ctx.
func NewLoader(ctx context.Context, f Fetcher) *Loader {
	if f == nil {
		f = DefaultFetcher{}
	}
	return &Loader{ctx: ctx, fetch: f, entries: map[string]*entry{}}
}

// Request starts loading the image of page id from location unless it is
// already loading or loaded.
func (l *Loader) Request(id, location string) {
	l.mu.Lock()
	if _, ok := l.entries[id]; ok {
		l.mu.Unlock()
		return
	}
	e := &entry{done: make(chan struct{})}
	l.entries[id] = e
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(e.done)
		e.img, e.err = l.load(location)
		if e.err != nil {
			logging.Logger().Warn("page image failed to load", "page", id, "err", e.err)
		}
	}()
}

func (l *Loader) load(location string) (image.Image, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("page has no image location")
	}
	rc, err := l.fetch.Open(l.ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Decode(rc)
}

// Image reports the state of page id without blocking: the decoded image
// once loaded, a load error if it failed, or (nil, nil) while in flight.
func (l *Loader) Image(id string) (image.Image, error) {
	l.mu.Lock()
	e, ok := l.entries[id]
	l.mu.Unlock()
	if !ok {
		return nil, ErrNotRequested
	}
	select {
	case <-e.done:
		return e.img, e.err
	default:
		return nil, nil
	}
}

// Ready returns a channel closed once page id has finished loading, or nil
// when it was never requested.
func (l *Loader) Ready(id string) <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[id]; ok {
		return e.done
	}
	return nil
}

// Forget drops a cached result so the next Request fetches again.
func (l *Loader) Forget(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[id]; ok {
		select {
		case <-e.done:
			delete(l.entries, id)
		default:
		}
	}
}

// Wait blocks until every requested fetch has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}
