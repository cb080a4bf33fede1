// Package navigator moves the editing session between the pages of one
// submission, saving and restoring each page's draft on the way.
package navigator

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/grademark/internal/annotate"
	"github.com/example/grademark/internal/annotation"
	"github.com/example/grademark/internal/draft"
	"github.com/example/grademark/internal/logging"
)

var (
	// ErrNoPages is returned when a submission has no pages to look at.
	ErrNoPages = errors.New("submission has no pages")
	// ErrPageRange is returned for a page index outside the submission.
	ErrPageRange = errors.New("page index out of range")
)

// Navigator tracks the active page. It is not safe for concurrent use.
type Navigator struct {
	ref    Ref
	pages  []Page
	index  int
	store  *draft.Store
	ctrl   *annotate.Controller
	onPage func(int, Page)
}

// Option configures a Navigator.
type Option func(*Navigator)

// OnPageChange registers fn to run whenever a page becomes active,
// including the first page when the navigator is created.
func OnPageChange(fn func(index int, p Page)) Option {
	return func(n *Navigator) { n.onPage = fn }
}

// New creates a navigator over pages and activates the first one.
func New(ref Ref, pages []Page, store *draft.Store, ctrl *annotate.Controller, opts ...Option) *Navigator {
	n := &Navigator{ref: ref, pages: pages, store: store, ctrl: ctrl}
	for _, o := range opts {
		o(n)
	}
	n.activate(0)
	return n
}

// Open fetches the pages of ref and creates a navigator over them.
func Open(ctx context.Context, src PageSource, ref Ref, store *draft.Store, ctrl *annotate.Controller, opts ...Option) (*Navigator, error) {
	pages, err := src.FetchPages(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch pages of %s: %w", ref, err)
	}
	return New(ref, pages, store, ctrl, opts...), nil
}

func (n *Navigator) activate(i int) {
	n.index = i
	if len(n.pages) == 0 {
		n.ctrl.Load(annotation.Document{})
		return
	}
	doc, _ := n.store.Load(n.ref.ID(), n.pages[i].ID)
	n.ctrl.Load(doc)
	if n.onPage != nil {
		n.onPage(i, n.pages[i])
	}
}

// Ref returns the submission being graded.
func (n *Navigator) Ref() Ref { return n.ref }

// Controller returns the controller editing the active page.
func (n *Navigator) Controller() *annotate.Controller { return n.ctrl }

// Count returns the number of pages.
func (n *Navigator) Count() int { return len(n.pages) }

// Index returns the active page index.
func (n *Navigator) Index() int { return n.index }

// Pages returns the submission's pages.
func (n *Navigator) Pages() []Page { return n.pages }

// Current returns the active page.
func (n *Navigator) Current() (Page, bool) {
	if len(n.pages) == 0 {
		return Page{}, false
	}
	return n.pages[n.index], true
}

// Page returns page i.
func (n *Navigator) Page(i int) (Page, error) {
	if len(n.pages) == 0 {
		return Page{}, ErrNoPages
	}
	if i < 0 || i >= len(n.pages) {
		return Page{}, fmt.Errorf("page %d of %d: %w", i+1, len(n.pages), ErrPageRange)
	}
	return n.pages[i], nil
}

// Draft returns the stored draft of page i.
func (n *Navigator) Draft(i int) (annotation.Document, bool) {
	p, err := n.Page(i)
	if err != nil {
		return annotation.Document{}, false
	}
	return n.store.Load(n.ref.ID(), p.ID)
}

// GoTo activates page i. The active page's pending edits are committed and
// saved before the target draft is loaded; when that save fails the active
// page stays in place with its edits and the error is returned. Moving to
// the active page or outside the submission does nothing.
func (n *Navigator) GoTo(i int) error {
	if i == n.index || i < 0 || i >= len(n.pages) {
		return nil
	}
	if err := n.SaveCurrent(false); err != nil {
		logging.Logger().Warn("saving page before switch failed", "page", n.index+1, "err", err)
		return err
	}
	n.activate(i)
	return nil
}

// Next activates the following page, if any.
func (n *Navigator) Next() error { return n.GoTo(n.index + 1) }

// Prev activates the preceding page, if any.
func (n *Navigator) Prev() error { return n.GoTo(n.index - 1) }

// SaveCurrent stores the active page's document when it has changed, or
// unconditionally when force is set.
func (n *Navigator) SaveCurrent(force bool) error {
	p, ok := n.Current()
	if !ok {
		return nil
	}
	n.ctrl.EndGesture()
	if !force && !n.ctrl.Dirty() {
		return nil
	}
	if err := n.store.Save(n.ref.ID(), p.ID, n.ctrl.Document()); err != nil {
		return fmt.Errorf("save page %d: %w", n.index+1, err)
	}
	n.ctrl.MarkClean()
	return nil
}

// ClearCurrent drops the active page's draft and starts it over empty.
func (n *Navigator) ClearCurrent() {
	p, ok := n.Current()
	if !ok {
		return
	}
	n.store.Clear(n.ref.ID(), p.ID)
	n.ctrl.Load(annotation.Document{})
}

// Cancel discards every draft of the submission and the in-memory edits.
func (n *Navigator) Cancel() {
	n.store.ClearAll(n.ref.ID())
	n.ctrl.Load(annotation.Document{})
}
