package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/grademark/internal/config"
)

type fakeAPI struct {
	srv *httptest.Server

	mu        sync.Mutex
	uploaded  map[string]int
	graded    []map[string]any
	gradeFail int
}

func pagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(1, 1, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{uploaded: map[string]int{}}
	blob := pagePNG(t)
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := "/classes/c1/lessons/l2"
		student := base + "/students/s3"
		switch {
		case r.URL.Path == base+"/images":
			json.NewEncoder(w).Encode(map[string]any{"items": []map[string]string{
				{"key": "p1", "url": f.srv.URL + "/img/p1.png"},
				{"key": "p2", "url": f.srv.URL + "/img/p2.png"},
			}})
		case r.URL.Path == student+"/homework":
			w.Write([]byte(`{"submission":{"question":"Fractions","status":"submitted","comment":"earlier note"}}`))
		case strings.HasPrefix(r.URL.Path, "/img/"):
			w.Header().Set("Content-Type", "image/png")
			w.Write(blob)
		case r.URL.Path == student+"/graded-images/presign":
			var req struct{ Keys []string }
			json.NewDecoder(r.Body).Decode(&req)
			var ups []map[string]string
			for _, k := range req.Keys {
				ups = append(ups, map[string]string{"key": k, "url": f.srv.URL + "/upload/" + k})
			}
			json.NewEncoder(w).Encode(map[string]any{"uploads": ups})
		case strings.HasPrefix(r.URL.Path, "/upload/") && r.Method == http.MethodPut:
			b := new(bytes.Buffer)
			b.ReadFrom(r.Body)
			f.mu.Lock()
			f.uploaded[strings.TrimPrefix(r.URL.Path, "/upload/")] = b.Len()
			f.mu.Unlock()
		case r.URL.Path == student+"/grade":
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.gradeFail > 0 {
				f.gradeFail--
				http.Error(w, `{"message":"try later"}`, http.StatusServiceUnavailable)
				return
			}
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			f.graded = append(f.graded, body)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func newTestRoot(t *testing.T, api string) (*root, *bytes.Buffer) {
	t.Helper()
	cfg := config.New()
	cfg.APIBase = api
	cfg.DraftDir = t.TempDir()
	cfg.Export.ReadyAttempts = 200
	cfg.Export.ReadyInterval = 10 * time.Millisecond
	cfg.Export.PixelRatio = 1
	cfg.Export.StageWidth = 40
	r := newRootWith(cfg, nil)
	out := &bytes.Buffer{}
	r.stdout = out
	return r, out
}

func run(t *testing.T, r *root, args ...string) error {
	t.Helper()
	return r.Run(args)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"pages without submission", []string{"pages"}},
		{"submit without submission", []string{"submit"}},
		{"draw without shape", []string{"draw", "-submission", "c1/l2/s3"}},
		{"drafts without action", []string{"drafts", "-submission", "c1/l2/s3"}},
		{"config without action", []string{"config"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestRoot(t, "http://unused")
			err := run(t, r, tc.args...)
			var uerr *UsageError
			if !errors.As(err, &uerr) {
				t.Fatalf("err = %v, want usage error", err)
			}
			if !strings.Contains(uerr.Error(), "Usage:") {
				t.Fatalf("help = %q", uerr.Error())
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"score too high", []string{"submit", "-submission", "c1/l2/s3", "-score", "101"}, "between 0 and 100"},
		{"negative score", []string{"annotate", "-submission", "c1/l2/s3", "-score", "-1"}, "between 0 and 100"},
		{"two comments", []string{"submit", "-submission", "c1/l2/s3", "-comment", "x", "-comment-preset", "good"}, "only one of"},
		{"unknown preset", []string{"submit", "-submission", "c1/l2/s3", "-comment-preset", "meh"}, "unknown comment preset"},
		{"bad color", []string{"draw", "-submission", "c1/l2/s3", "-color", "nope", "rect", "0", "0", "1", "1"}, "unknown color"},
		{"flat rect", []string{"draw", "-submission", "c1/l2/s3", "rect", "0", "0", "0", "5"}, "distinct corners"},
		{"short freehand", []string{"draw", "-submission", "c1/l2/s3", "freehand", "1", "2"}, "two x y pairs"},
		{"empty text", []string{"draw", "-submission", "c1/l2/s3", "text", "1", "2", " "}, "cannot be empty"},
		{"unknown shape", []string{"draw", "-submission", "c1/l2/s3", "circle", "1", "2", "3"}, "unsupported shape"},
		{"show without page", []string{"drafts", "-submission", "c1/l2/s3", "show"}, "requires -page-id"},
		{"unknown drafts action", []string{"drafts", "-submission", "c1/l2/s3", "purge"}, "unknown drafts command"},
		{"unknown config action", []string{"config", "dump"}, "unknown config command"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestRoot(t, "http://unused")
			err := run(t, r, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestNoAPIConfigured(t *testing.T) {
	r, _ := newTestRoot(t, "")
	if err := run(t, r, "pages", "-submission", "c1/l2/s3"); !errors.Is(err, errNoAPI) {
		t.Fatalf("err = %v", err)
	}
}

func TestPagesListsDrafts(t *testing.T) {
	api := newFakeAPI(t)
	r, out := newTestRoot(t, api.srv.URL)
	if err := run(t, r, "draw", "-submission", "c1/l2/s3", "-page", "2", "rect", "2", "2", "20", "30"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := run(t, r, "pages", "-submission", "c1/l2/s3"); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"question: Fractions", "status:   submitted", "  1: p1 ", "*  2: p2 "} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestDrawAndDrafts(t *testing.T) {
	api := newFakeAPI(t)
	r, out := newTestRoot(t, api.srv.URL)
	steps := [][]string{
		{"draw", "-submission", "c1/l2/s3", "-color", "blue", "freehand", "1", "1", "10", "10", "20", "5"},
		{"draw", "-submission", "c1/l2/s3", "text", "5", "5", "see", "me"},
	}
	for _, args := range steps {
		if err := run(t, r, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}
	if !strings.Contains(out.String(), "1 stroke(s), 0 rectangle(s), 1 text label(s)") {
		t.Fatalf("draw output = %q", out.String())
	}

	out.Reset()
	if err := run(t, r, "drafts", "-submission", "c1/l2/s3", "list"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); !strings.HasPrefix(got, "p1: 1 stroke(s)") {
		t.Fatalf("list = %q", got)
	}

	out.Reset()
	if err := run(t, r, "drafts", "-submission", "c1/l2/s3", "-page-id", "p1", "show"); err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("show printed invalid JSON: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "#0000ff") || !strings.Contains(out.String(), "see me") {
		t.Fatalf("show = %s", out.String())
	}

	out.Reset()
	if err := run(t, r, "drafts", "-submission", "c1/l2/s3", "clear-all"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := run(t, r, "drafts", "-submission", "c1/l2/s3", "list"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "no drafts for c1/l2/s3\n" {
		t.Fatalf("list after clear = %q", got)
	}
}

func TestDrawClear(t *testing.T) {
	api := newFakeAPI(t)
	r, out := newTestRoot(t, api.srv.URL)
	if err := run(t, r, "draw", "-submission", "c1/l2/s3", "rect", "1", "1", "9", "9"); err != nil {
		t.Fatal(err)
	}
	if err := run(t, r, "draw", "-submission", "c1/l2/s3", "clear"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "cleared c1/l2/s3 page 1") {
		t.Fatalf("output = %q", out.String())
	}
	if pages := r.store().Pages("c1_l2_s3"); len(pages) != 0 {
		t.Fatalf("drafts left: %v", pages)
	}
}

func TestRenderWritesPNG(t *testing.T) {
	api := newFakeAPI(t)
	r, out := newTestRoot(t, api.srv.URL)
	if err := run(t, r, "draw", "-submission", "c1/l2/s3", "rect", "2", "2", "30", "40"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "page.png")
	if err := run(t, r, "render", "-submission", "c1/l2/s3", "-output", path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 60 {
		t.Fatalf("size = %v", b)
	}
	if !strings.Contains(out.String(), "wrote "+path) {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRenderToClipboard(t *testing.T) {
	api := newFakeAPI(t)
	r, out := newTestRoot(t, api.srv.URL)
	var copied image.Image
	original := writeClipboardImage
	writeClipboardImage = func(img image.Image) error { copied = img; return nil }
	t.Cleanup(func() { writeClipboardImage = original })

	if err := run(t, r, "render", "-submission", "c1/l2/s3", "-page", "2", "-to-clipboard"); err != nil {
		t.Fatal(err)
	}
	if copied == nil {
		t.Fatal("nothing copied")
	}
	if got := out.String(); got != "copied c1/l2/s3 page 2 to the clipboard\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestRenderBadPage(t *testing.T) {
	api := newFakeAPI(t)
	r, _ := newTestRoot(t, api.srv.URL)
	if err := run(t, r, "render", "-submission", "c1/l2/s3", "-page", "9"); err == nil || !strings.Contains(err.Error(), "page 9") {
		t.Fatalf("err = %v", err)
	}
}

func TestSubmitNothingAnnotated(t *testing.T) {
	api := newFakeAPI(t)
	r, _ := newTestRoot(t, api.srv.URL)
	err := run(t, r, "submit", "-submission", "c1/l2/s3")
	if err == nil || !strings.Contains(err.Error(), "annotate at least one page") {
		t.Fatalf("err = %v", err)
	}
	if len(api.graded) != 0 {
		t.Fatalf("graded = %v", api.graded)
	}
}

func TestSubmitUploadsAndGrades(t *testing.T) {
	api := newFakeAPI(t)
	api.gradeFail = 1
	r, out := newTestRoot(t, api.srv.URL)
	if err := run(t, r, "draw", "-submission", "c1/l2/s3", "-page", "2", "text", "3", "30", "ok"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := run(t, r, "submit", "-submission", "c1/l2/s3", "-score", "85", "-comment-preset", "fix"); err != nil {
		t.Fatal(err)
	}
	if len(api.uploaded) != 1 || api.uploaded["p2"] == 0 {
		t.Fatalf("uploaded = %v", api.uploaded)
	}
	if len(api.graded) != 1 {
		t.Fatalf("graded = %v", api.graded)
	}
	if got := api.graded[0]; got["score"] != float64(85) || got["comment"] != commentPresets["fix"] {
		t.Fatalf("grade = %v", got)
	}
	if !strings.HasPrefix(out.String(), "graded c1/l2/s3: score 85, 1 page(s) uploaded") {
		t.Fatalf("output = %q", out.String())
	}
	if pages := r.store().Pages("c1_l2_s3"); len(pages) != 0 {
		t.Fatalf("drafts left after submit: %v", pages)
	}
}

func TestSubmitGradeFailureKeepsDrafts(t *testing.T) {
	api := newFakeAPI(t)
	api.gradeFail = 5
	r, _ := newTestRoot(t, api.srv.URL)
	if err := run(t, r, "draw", "-submission", "c1/l2/s3", "rect", "1", "1", "5", "5"); err != nil {
		t.Fatal(err)
	}
	err := run(t, r, "submit", "-submission", "c1/l2/s3", "-retries", "2")
	if err == nil || !strings.Contains(err.Error(), "grade not recorded") {
		t.Fatalf("err = %v", err)
	}
	if api.gradeFail != 2 {
		t.Fatalf("grade attempts = %d, want 3", 5-api.gradeFail)
	}
	if pages := r.store().Pages("c1_l2_s3"); len(pages) != 1 {
		t.Fatalf("drafts = %v", pages)
	}
}

func TestCommentResolution(t *testing.T) {
	api := newFakeAPI(t)
	original := readClipboardText
	readClipboardText = func() (string, error) { return "  from clipboard \n", nil }
	t.Cleanup(func() { readClipboardText = original })

	tests := []struct {
		name  string
		flags commentFlags
		want  string
	}{
		{"text", commentFlags{text: "typed"}, "typed"},
		{"preset", commentFlags{preset: "good"}, "Great work! Keep it up."},
		{"clipboard", commentFlags{fromClipboard: true}, "from clipboard"},
		{"previous grade", commentFlags{}, "earlier note"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestRoot(t, api.srv.URL)
			cl, err := r.client()
			if err != nil {
				t.Fatal(err)
			}
			ref := refFlag{}
			if err := ref.Set("c1/l2/s3"); err != nil {
				t.Fatal(err)
			}
			got, err := tc.flags.resolve(t.Context(), cl, ref.ref)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("comment = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestArchiveWritesPDF(t *testing.T) {
	api := newFakeAPI(t)
	r, out := newTestRoot(t, api.srv.URL)
	for _, page := range []string{"1", "2"} {
		if err := run(t, r, "draw", "-submission", "c1/l2/s3", "-page", page, "rect", "1", "1", "9", "9"); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := run(t, r, "archive", "-submission", "c1/l2/s3", "-output", path); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a PDF: %q", b[:8])
	}
	if !strings.Contains(out.String(), "(2 page(s))") {
		t.Fatalf("output = %q", out.String())
	}
	if len(api.uploaded) != 0 || len(api.graded) != 0 {
		t.Fatal("archive contacted the upload or grade endpoints")
	}
	if pages := r.store().Pages("c1_l2_s3"); len(pages) != 2 {
		t.Fatalf("archive changed drafts: %v", pages)
	}
}

func TestConfigPrint(t *testing.T) {
	r, out := newTestRoot(t, "http://api.test")
	if err := run(t, r, "config", "print"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); !strings.Contains(got, "api_base = http://api.test") || !strings.Contains(got, "[export]") {
		t.Fatalf("config = %q", got)
	}
}

func TestVersion(t *testing.T) {
	r, out := newTestRoot(t, "")
	if err := run(t, r, "version"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "grademark version dev\n" {
		t.Fatalf("version = %q", got)
	}
}

func TestHelpListsFlags(t *testing.T) {
	r, _ := newTestRoot(t, "http://unused")
	_, err := parseSubmitCmd(nil, r)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v", err)
	}
	help := uerr.Error()
	for _, want := range []string{
		"Usage: grademark submit",
		"-submission class/lesson/student",
		"-score int (default 100)",
		"-comment-from-clipboard\n",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}
