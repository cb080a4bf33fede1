package backdrop

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoaderFetchesOnce(t *testing.T) {
	data := pngBytes(t, 4, 3)
	calls := 0
	release := make(chan struct{})
	f := FetcherFunc(func(ctx context.Context, loc string) (io.ReadCloser, error) {
		calls++
		<-release
		return io.NopCloser(bytes.NewReader(data)), nil
	})
	l := NewLoader(context.Background(), f)
	l.Request("p1", "mem://p1")
	l.Request("p1", "mem://p1")
	if img, err := l.Image("p1"); img != nil || err != nil {
		t.Fatalf("expected pending, got %v %v", img, err)
	}
	close(release)
	l.Wait()
	img, err := l.Image("p1")
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
	select {
	case <-l.Ready("p1"):
	default:
		t.Fatal("ready channel not closed after load")
	}
	if l.Ready("other") != nil {
		t.Fatal("unrequested page has a ready channel")
	}
}

func TestLoaderReportsFailure(t *testing.T) {
	boom := errors.New("boom")
	l := NewLoader(context.Background(), FetcherFunc(func(context.Context, string) (io.ReadCloser, error) {
		return nil, boom
	}))
	l.Request("p1", "x")
	l.Wait()
	if _, err := l.Image("p1"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	l.Forget("p1")
	if _, err := l.Image("p1"); !errors.Is(err, ErrNotRequested) {
		t.Fatalf("err after forget = %v", err)
	}
}

func TestLoaderEmptyLocation(t *testing.T) {
	l := NewLoader(context.Background(), nil)
	l.Request("p1", "")
	l.Wait()
	if _, err := l.Image("p1"); err == nil {
		t.Fatal("expected error for empty location")
	}
}

func TestDefaultFetcherHTTPAndFile(t *testing.T) {
	data := pngBytes(t, 2, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "page.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(context.Background(), DefaultFetcher{Client: srv.Client()})
	l.Request("http", srv.URL+"/page.png")
	l.Request("file", path)
	l.Request("fileurl", "file://"+path)
	l.Request("missing", srv.URL+"/missing.png")
	l.Wait()
	for _, id := range []string{"http", "file", "fileurl"} {
		if img, err := l.Image(id); err != nil || img == nil {
			t.Errorf("%s: %v %v", id, img, err)
		}
	}
	if _, err := l.Image("missing"); err == nil {
		t.Error("expected 404 to fail")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("nope"))); err == nil {
		t.Fatal("expected error")
	}
}
