// Package workbench is the grading window: the active page with its
// annotations, a toolbar and a status line, driven by shiny.
package workbench

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/grademark/internal/annotate"
	"github.com/example/grademark/internal/backdrop"
	"github.com/example/grademark/internal/clipboard"
	"github.com/example/grademark/internal/export"
	"github.com/example/grademark/internal/logging"
	"github.com/example/grademark/internal/navigator"
	"github.com/example/grademark/internal/notify"
	"github.com/example/grademark/internal/render"
	"github.com/example/grademark/internal/style"
)

const (
	defaultWidth  = render.DefaultStageWidth
	defaultHeight = 860
	messageTTL    = 3 * time.Second
)

var (
	now            = time.Now
	writeClipboard = clipboard.WriteImage
)

// Options configures a Workbench.
type Options struct {
	Style    *style.Style
	Notifier *notify.Notifier
	// Score and Comment are recorded by the Submit action.
	Score   int
	Comment string
	// PixelRatio and StageWidth apply to copied pages.
	PixelRatio float64
	StageWidth float64
}

// Workbench runs the grading window for one submission.
type Workbench struct {
	nav  *navigator.Navigator
	ctrl *annotate.Controller
	bg   *backdrop.Loader
	orch *export.Orchestrator
	opts Options
	st   *style.Style

	width, height int
	buttons       []*button
	hover         int
	actions       map[string]func()
	keys          map[shortcut]string

	message      string
	warning      bool
	messageUntil time.Time

	watching  string
	quit      bool
	cancelled bool
	result    *export.Result
	err       error
}

// New creates a workbench. orch may be nil, in which case Submit is
// unavailable.
func New(nav *navigator.Navigator, bg *backdrop.Loader, orch *export.Orchestrator, opts Options) *Workbench {
	st := opts.Style
	if st == nil {
		st = style.Default()
	}
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = render.DefaultPixelRatio
	}
	w := &Workbench{
		nav:    nav,
		ctrl:   nav.Controller(),
		bg:     bg,
		orch:   orch,
		opts:   opts,
		st:     st,
		width:  defaultWidth,
		height: defaultHeight,
		hover:  -1,
	}
	w.configure()
	return w
}

// Result returns the outcome of a submit run from the window, if any.
func (w *Workbench) Result() *export.Result { return w.result }

// Run opens the window and blocks until it is closed.
func (w *Workbench) Run() error {
	driver.Main(w.Main)
	return w.err
}

// Main is the shiny entry point.
func (w *Workbench) Main(s screen.Screen) {
	win, err := s.NewWindow(&screen.NewWindowOptions{
		Width:  w.width,
		Height: w.height,
		Title:  "grademark " + w.nav.Ref().String(),
	})
	if err != nil {
		w.err = fmt.Errorf("new window: %w", err)
		return
	}
	defer win.Release()
	defer w.close()

	w.watch(win)
	for {
		switch e := win.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			w.width, w.height = e.WidthPx, e.HeightPx
			win.Send(paint.Event{})
		case paint.Event:
			w.paint(s, win)
		case mouse.Event:
			if w.handleMouse(e) {
				win.Send(paint.Event{})
			}
		case key.Event:
			if w.handleKey(e) {
				win.Send(paint.Event{})
			}
		}
		if w.quit {
			return
		}
		w.watch(win)
	}
}

// watch starts loading the active page image and repaints once it lands.
func (w *Workbench) watch(win screen.Window) {
	p, ok := w.nav.Current()
	if !ok || p.ID == w.watching {
		return
	}
	w.watching = p.ID
	w.bg.Request(p.ID, p.URL)
	if ready := w.bg.Ready(p.ID); ready != nil {
		go func() {
			<-ready
			win.Send(paint.Event{})
		}()
	}
}

func (w *Workbench) paint(s screen.Screen, win screen.Window) {
	if w.width <= 0 || w.height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{X: w.width, Y: w.height})
	if err != nil {
		logging.Logger().Error("window buffer", "err", err)
		return
	}
	defer b.Release()
	if err := w.drawFrame(b.RGBA()); err != nil {
		logging.Logger().Error("paint failed", "err", err)
	}
	win.Upload(image.Point{}, b, b.Bounds())
	win.Publish()
}

// close keeps the work of an unfinished session.
func (w *Workbench) close() {
	if w.result != nil || w.cancelled {
		return
	}
	if err := w.nav.SaveCurrent(false); err != nil {
		logging.Logger().Warn("draft not saved on close", "err", err)
	}
}

func (w *Workbench) say(format string, args ...any) {
	w.message = fmt.Sprintf(format, args...)
	w.warning = false
	w.messageUntil = now().Add(messageTTL)
	logging.Logger().Info("status", "message", w.message)
}

func (w *Workbench) warn(format string, args ...any) {
	w.say(format, args...)
	w.warning = true
}

// pageImage flattens the active page the way it is exported.
func (w *Workbench) pageImage() (image.Image, error) {
	p, ok := w.nav.Current()
	if !ok {
		return nil, navigator.ErrNoPages
	}
	bg, err := w.bg.Image(p.ID)
	if err != nil {
		return nil, err
	}
	if bg == nil {
		return nil, errors.New("page image is still loading")
	}
	return render.Compose(render.Scene{Background: bg, Document: w.ctrl.Document()}, render.Options{
		Stage:      render.StageFor(bg, w.opts.StageWidth),
		PixelRatio: w.opts.PixelRatio,
		Style:      w.st,
	})
}

func (w *Workbench) copyPage() {
	img, err := w.pageImage()
	if err != nil {
		w.warn("copy: %v", err)
		return
	}
	if err := writeClipboard(img); err != nil {
		w.warn("copy: %v", err)
		return
	}
	detail := fmt.Sprintf("page %d", w.nav.Index()+1)
	w.say("%s copied to clipboard", detail)
	if w.opts.Notifier != nil {
		w.opts.Notifier.Copied(detail)
	}
}

// cancel ends the session without grading: every draft of the submission
// is removed and the window closes.
func (w *Workbench) cancel() {
	w.ctrl.EndGesture()
	w.nav.Cancel()
	w.cancelled = true
	w.say("grading of %s cancelled, drafts removed", w.nav.Ref())
	w.quit = true
}

// Cancelled reports whether the session was cancelled from the window.
func (w *Workbench) Cancelled() bool { return w.cancelled }

func (w *Workbench) submit() {
	if w.orch == nil {
		w.warn("submit is not available in this session")
		return
	}
	ctx := context.Background()
	var (
		res *export.Result
		err error
	)
	if w.orch.CanRetryFinalize() {
		res, err = w.orch.RetryFinalize(ctx)
	} else {
		res, err = w.orch.Submit(ctx, w.opts.Score, w.opts.Comment)
	}
	if err != nil {
		w.warn("%s", describe(err))
		return
	}
	w.result = res
	w.say("grade recorded for %s", res.Ref)
	if w.opts.Notifier != nil {
		w.opts.Notifier.Submitted(res.Ref.String(), len(res.Pages), nil)
	}
	w.quit = true
}

func describe(err error) string {
	var (
		fin   *export.FinalizeError
		ready *export.ReadinessError
		up    *export.UploadError
	)
	switch {
	case errors.Is(err, export.ErrNothingToUpload):
		return "nothing to submit: annotate at least one page"
	case errors.As(err, &fin):
		return "pages uploaded but the grade was not recorded; submit again to retry"
	case errors.As(err, &ready):
		return ready.Error()
	case errors.As(err, &up):
		return "upload failed: " + up.Error()
	}
	return "submit failed: " + err.Error()
}
