package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"time"

	"github.com/example/grademark/internal/annotate"
	"github.com/example/grademark/internal/backdrop"
	"github.com/example/grademark/internal/draft"
	"github.com/example/grademark/internal/export"
	"github.com/example/grademark/internal/gradeapi"
	"github.com/example/grademark/internal/navigator"
	"github.com/example/grademark/internal/viewport"
)

var errNoAPI = errors.New("no grading API configured: use -api, GRADEMARK_API_BASE or api_base in the config file")

// cmdBase carries what every subcommand shares: the root options and its
// own flag set.
type cmdBase struct {
	*root
	fs   *flag.FlagSet
	name string
}

func newBase(r *root, name string) cmdBase {
	return cmdBase{root: r, fs: flag.NewFlagSet(name, flag.ExitOnError), name: name}
}

func (c cmdBase) FlagSet() *flag.FlagSet { return c.fs }

func (c cmdBase) Program() string { return c.root.subcommand(c.name) }

// refFlag parses a class/lesson/student submission reference.
type refFlag struct {
	ref navigator.Ref
	set bool
}

func (f *refFlag) String() string {
	if f == nil || !f.set {
		return ""
	}
	return f.ref.String()
}

func (f *refFlag) Set(s string) error {
	ref, err := navigator.ParseRef(s)
	if err != nil {
		return err
	}
	f.ref, f.set = ref, true
	return nil
}

func (r *root) client() (*gradeapi.Client, error) {
	if r.apiBase == "" {
		return nil, errNoAPI
	}
	return gradeapi.New(r.apiBase, r.token), nil
}

func (r *root) store() *draft.Store {
	return draft.NewStore(draft.DirKV{Dir: r.draftDir})
}

func (r *root) controller(opts ...annotate.Option) *annotate.Controller {
	ed := r.config.Editor
	base := []annotate.Option{
		annotate.WithColor(ed.PenColor),
		annotate.WithSize(ed.PenSize),
		annotate.WithHistoryLimit(ed.HistoryLimit),
		annotate.WithMaxStrokePoints(ed.MaxStrokePoints),
		annotate.WithViewport(viewport.WithBounds(r.config.Viewport.MinZoom, r.config.Viewport.MaxZoom)),
	}
	return annotate.New(append(base, opts...)...)
}

func (r *root) exportOptions() export.Options {
	x := r.config.Export
	return export.Options{
		PixelRatio:    x.PixelRatio,
		StageWidth:    x.StageWidth,
		ReadyAttempts: x.ReadyAttempts,
		ReadyInterval: x.ReadyInterval,
		Style:         r.activeStyle,
	}
}

// session is one submission opened against the grading API.
type session struct {
	client *gradeapi.Client
	store  *draft.Store
	nav    *navigator.Navigator
	bg     *backdrop.Loader
}

func (r *root) openSession(ctx context.Context, ref navigator.Ref, opts ...annotate.Option) (*session, error) {
	c, err := r.client()
	if err != nil {
		return nil, err
	}
	s := &session{client: c, store: r.store(), bg: backdrop.NewLoader(ctx, c)}
	s.nav, err = navigator.Open(ctx, c, ref, s.store, r.controller(opts...), navigator.OnPageChange(func(_ int, p navigator.Page) {
		s.bg.Request(p.ID, p.URL)
	}))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// goToPage activates the 1-based page number.
func (s *session) goToPage(page int) error {
	if _, err := s.nav.Page(page - 1); err != nil {
		return fmt.Errorf("page %d: %w", page, err)
	}
	return s.nav.GoTo(page - 1)
}

// background waits for the active page image using the export readiness
// bounds.
func (s *session) background(ctx context.Context, opts export.Options) (image.Image, error) {
	p, ok := s.nav.Current()
	if !ok {
		return nil, navigator.ErrNoPages
	}
	attempts, interval := opts.ReadyAttempts, opts.ReadyInterval
	if attempts <= 0 {
		attempts = export.DefaultReadyAttempts
	}
	if interval <= 0 {
		interval = export.DefaultReadyInterval
	}
	s.bg.Request(p.ID, p.URL)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(attempts)*interval)
	defer cancel()
	select {
	case <-s.bg.Ready(p.ID):
	case <-ctx.Done():
		return nil, &export.ReadinessError{PageIndex: s.nav.Index(), Err: ctx.Err()}
	}
	img, err := s.bg.Image(p.ID)
	if err != nil {
		return nil, &export.ReadinessError{PageIndex: s.nav.Index(), Err: err}
	}
	return img, nil
}
