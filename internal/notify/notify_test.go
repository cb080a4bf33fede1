package notify

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/grademark/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	orig := send
	send = func(title, body string, opts platform.Options) error {
		if opts.IconPath != "" {
			if _, err := os.Stat(opts.IconPath); err != nil {
				t.Errorf("icon missing while notifying: %v", err)
			}
		}
		got = append(got, sent{title, body, opts})
		return nil
	}
	t.Cleanup(func() { send = orig })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Submitted("c/l/s", 2, nil)
	n.Copied("")
	var nilNotifier *Notifier
	nilNotifier.Rendered("x.png")
	if len(*got) != 0 {
		t.Fatalf("sent %v", *got)
	}
}

func TestSubmitted(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventSubmit, true)
	n.Submitted("c1/l2/s3", 3, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(*got) != 1 {
		t.Fatalf("sent %d", len(*got))
	}
	s := (*got)[0]
	if s.title != "Grademark" || s.body != "Graded c1/l2/s3 (3 pages)" || s.opts.IconPath == "" || s.opts.Category != "transfer.complete" {
		t.Fatalf("sent %+v", s)
	}
	if _, err := os.Stat(s.opts.IconPath); !os.IsNotExist(err) {
		t.Fatal("preview not cleaned up")
	}
}

func TestRenderedAndCopied(t *testing.T) {
	got := capture(t)
	path := filepath.Join(t.TempDir(), "page.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	n := New(DefaultPreferences())
	n.Enable(EventRender, true)
	n.Enable(EventCopy, true)
	n.Rendered(path)
	n.Copied("")
	if len(*got) != 2 {
		t.Fatalf("sent %d", len(*got))
	}
	if (*got)[0].body != "Rendered "+path || (*got)[0].opts.IconPath != path {
		t.Fatalf("render = %+v", (*got)[0])
	}
	if (*got)[1].body != "Copied page to clipboard" {
		t.Fatalf("copy = %+v", (*got)[1])
	}
}

func TestLoadPreferences(t *testing.T) {
	env := map[string]string{
		"GRADEMARK_NOTIFY_TITLE":       "Marks",
		"GRADEMARK_NOTIFY_SUBMIT_TEXT": "Done",
	}
	p := LoadPreferences(func(k string) string { return env[k] })
	if p.Title != "Marks" || p.Events[EventSubmit].Template != "Done" {
		t.Fatalf("prefs = %+v", p)
	}
	if p.Events[EventCopy].Template != DefaultPreferences().Events[EventCopy].Template {
		t.Fatal("unset template changed")
	}
}
