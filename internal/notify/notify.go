// Package notify raises desktop notifications for finished grading work.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/grademark/internal/logging"
	"github.com/example/grademark/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSubmit fires when a grade has been recorded.
	EventSubmit Event = "submit"
	// EventRender fires when a page has been rendered to a file.
	EventRender Event = "render"
	// EventCopy fires when a rendered page is copied to the clipboard.
	EventCopy Event = "copy"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Grademark",
		Events: map[Event]EventPreference{
			EventSubmit: {Template: "Graded %s"},
			EventRender: {Template: "Rendered %s"},
			EventCopy:   {Template: "Copied %s to clipboard"},
		},
	}
}

// LoadPreferences reads overrides from GRADEMARK_NOTIFY_* variables.
func LoadPreferences(getenv func(string) string) Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(getenv("GRADEMARK_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for event, key := range map[Event]string{
		EventSubmit: "GRADEMARK_NOTIFY_SUBMIT_TEXT",
		EventRender: "GRADEMARK_NOTIFY_RENDER_TEXT",
		EventCopy:   "GRADEMARK_NOTIFY_COPY_TEXT",
	} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			prefs.Events[event] = EventPreference{Template: v}
		}
	}
	return prefs
}

// send delivers a notification; tests replace it.
var send = platform.Notify

const categoryTransfer = "transfer.complete"

// Notifier sends OS-level notifications based on the configured preferences.
// A nil Notifier is valid and sends nothing.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences. All events
// start disabled.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Submitted announces a recorded grade. preview, when non-nil, is shown as
// the notification icon.
func (n *Notifier) Submitted(submission string, pages int, preview image.Image) {
	if !n.enabledFor(EventSubmit) {
		return
	}
	opts := platform.Options{Category: categoryTransfer}
	if preview != nil {
		if path, cleanup, err := createPreview(preview); err != nil {
			logging.Logger().Warn("notification preview failed", "err", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	detail := submission
	if pages == 1 {
		detail += " (1 page)"
	} else if pages > 1 {
		detail += fmt.Sprintf(" (%d pages)", pages)
	}
	n.dispatch(EventSubmit, detail, opts)
}

// Rendered announces a page written to path.
func (n *Notifier) Rendered(path string) {
	if !n.enabledFor(EventRender) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{Category: categoryTransfer}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventRender, detail, opts)
}

// Copied announces a clipboard copy.
func (n *Notifier) Copied(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "page"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	body := template
	if strings.Contains(template, "%s") {
		body = fmt.Sprintf(template, strings.TrimSpace(detail))
	}
	if body = strings.TrimSpace(body); body == "" {
		return
	}
	if err := send(n.prefs.Title, body, opts); err != nil {
		logging.Logger().Warn("notification failed", "event", string(event), "err", err)
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "grademark-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Logger().Debug("remove preview failed", "err", err)
		}
	}
	return path, cleanup, nil
}
