// Package export flattens every annotated page of a submission to PNG,
// uploads the results and records the grade.
package export

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/grademark/internal/annotation"
	"github.com/example/grademark/internal/logging"
	"github.com/example/grademark/internal/navigator"
	"github.com/example/grademark/internal/render"
	"github.com/example/grademark/internal/style"
)

const (
	DefaultReadyAttempts  = 30
	DefaultReadyInterval  = 50 * time.Millisecond
	DefaultUploadParallel = 4
	MaxScore              = 100
)

// Target is where one page's bytes are PUT.
type Target struct {
	URL     string
	Headers map[string]string
}

// Uploader obtains upload targets and stores bytes at them.
type Uploader interface {
	RequestUploadTargets(ctx context.Context, ref navigator.Ref, keys []string) (map[string]Target, error)
	PutBytes(ctx context.Context, t Target, blob []byte) error
}

// Grader records the final score and comment of a submission.
type Grader interface {
	FinalizeGrade(ctx context.Context, ref navigator.Ref, score int, comment string) error
}

// Backgrounds loads page images. Image returns (nil, nil) while a page is
// still loading.
type Backgrounds interface {
	Request(id, location string)
	Image(id string) (image.Image, error)
}

// Options tunes rasterization and the readiness wait.
type Options struct {
	PixelRatio     float64
	StageWidth     float64
	ReadyAttempts  int
	ReadyInterval  time.Duration
	UploadParallel int
	Style          *style.Style
}

func (o Options) withDefaults() Options {
	if o.PixelRatio <= 0 {
		o.PixelRatio = render.DefaultPixelRatio
	}
	if o.ReadyAttempts <= 0 {
		o.ReadyAttempts = DefaultReadyAttempts
	}
	if o.ReadyInterval <= 0 {
		o.ReadyInterval = DefaultReadyInterval
	}
	if o.UploadParallel <= 0 {
		o.UploadParallel = DefaultUploadParallel
	}
	return o
}

// Result describes a completed submission.
type Result struct {
	RunID string
	Ref   navigator.Ref
	// Pages are the zero-based indexes that were uploaded, in page order.
	Pages []int
	Keys  []string
}

type pending struct {
	score   int
	comment string
	result  *Result
}

// Orchestrator runs the submit pipeline for the session behind a
// navigator. It is not safe for concurrent use.
type Orchestrator struct {
	nav      *navigator.Navigator
	bg       Backgrounds
	uploader Uploader
	grader   Grader
	opts     Options
	retry    *pending
}

// New creates an orchestrator.
func New(nav *navigator.Navigator, bg Backgrounds, up Uploader, g Grader, opts Options) *Orchestrator {
	return &Orchestrator{nav: nav, bg: bg, uploader: up, grader: g, opts: opts.withDefaults()}
}

type workItem struct {
	index int
	page  navigator.Page
	doc   annotation.Document
}

// Page is one flattened page ready for upload.
type Page struct {
	Index int
	Key   string
	PNG   []byte
	Stage render.Stage
}

// Submit saves the active page, renders every annotated page, uploads the
// images and records score and comment. Drafts are removed only after the
// grade has been recorded; on any failure they stay untouched.
func (o *Orchestrator) Submit(ctx context.Context, score int, comment string) (*Result, error) {
	if score < 0 || score > MaxScore {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	o.retry = nil
	ref := o.nav.Ref()
	res := &Result{RunID: uuid.NewString(), Ref: ref}
	log := logging.Logger().With("run", res.RunID, "submission", ref.String())

	out, err := o.render(ctx, log)
	if err != nil {
		return nil, err
	}
	for _, p := range out {
		res.Pages = append(res.Pages, p.Index)
		res.Keys = append(res.Keys, p.Key)
	}

	if err := o.upload(ctx, log, ref, out); err != nil {
		return nil, err
	}
	log.Info("pages uploaded", "count", len(out))

	if err := o.grader.FinalizeGrade(ctx, ref, score, comment); err != nil {
		o.retry = &pending{score: score, comment: comment, result: res}
		log.Error("finalize failed", "err", err)
		return nil, &FinalizeError{Err: err}
	}
	o.nav.Cancel()
	log.Info("submit complete")
	return res, nil
}

// Render saves the active page and flattens every annotated page in page
// order without uploading anything. It returns ErrNothingToUpload when no
// page carries annotations.
func (o *Orchestrator) Render(ctx context.Context) ([]Page, error) {
	log := logging.Logger().With("submission", o.nav.Ref().String())
	return o.render(ctx, log)
}

func (o *Orchestrator) render(ctx context.Context, log *slog.Logger) ([]Page, error) {
	if err := o.nav.SaveCurrent(true); err != nil {
		log.Warn("saving active page failed", "err", err)
	}
	work := o.workList()
	if len(work) == 0 {
		return nil, ErrNothingToUpload
	}
	log.Info("rendering pages", "pages", len(work))

	out := make([]Page, 0, len(work))
	for _, w := range work {
		p, err := o.renderPage(ctx, w)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// RetryFinalize records the grade again after Submit ended in a
// FinalizeError, without uploading the pages a second time.
func (o *Orchestrator) RetryFinalize(ctx context.Context) (*Result, error) {
	if o.retry == nil {
		return nil, ErrNoPendingFinalize
	}
	p := o.retry
	if err := o.grader.FinalizeGrade(ctx, p.result.Ref, p.score, p.comment); err != nil {
		return nil, &FinalizeError{Err: err}
	}
	o.retry = nil
	o.nav.Cancel()
	logging.Logger().Info("finalize retried", "run", p.result.RunID)
	return p.result, nil
}

// CanRetryFinalize reports whether RetryFinalize has something to retry.
func (o *Orchestrator) CanRetryFinalize() bool { return o.retry != nil }

// workList collects the pages to upload in page order. The active page
// uses its in-memory document when that is non-empty and its draft
// otherwise; other pages are included only when their draft is non-empty.
func (o *Orchestrator) workList() []workItem {
	cur := o.nav.Index()
	live := o.nav.Controller().Document()
	var work []workItem
	for i, p := range o.nav.Pages() {
		var doc annotation.Document
		if i == cur && !live.IsEmpty() {
			doc = live
		} else {
			d, ok := o.nav.Draft(i)
			if !ok {
				continue
			}
			doc = d
		}
		if doc.IsEmpty() {
			continue
		}
		work = append(work, workItem{index: i, page: p, doc: doc})
	}
	return work
}

func (o *Orchestrator) renderPage(ctx context.Context, w workItem) (Page, error) {
	if err := o.nav.GoTo(w.index); err != nil {
		return Page{}, fmt.Errorf("render page %d: %w", w.index+1, err)
	}
	o.nav.Controller().Load(w.doc)
	o.bg.Request(w.page.ID, w.page.URL)
	bg, err := o.waitReady(ctx, w)
	if err != nil {
		return Page{}, err
	}
	stage := render.StageFor(bg, o.opts.StageWidth)
	blob, err := render.PNG(render.Scene{Background: bg, Document: w.doc}, render.Options{
		Stage:      stage,
		PixelRatio: o.opts.PixelRatio,
		Style:      o.opts.Style,
	})
	if err != nil {
		return Page{}, fmt.Errorf("render page %d: %w", w.index+1, err)
	}
	if len(blob) == 0 {
		return Page{}, fmt.Errorf("render page %d: empty image", w.index+1)
	}
	return Page{Index: w.index, Key: w.page.ID, PNG: blob, Stage: stage}, nil
}

// waitReady polls the page background a bounded number of times.
func (o *Orchestrator) waitReady(ctx context.Context, w workItem) (image.Image, error) {
	for attempt := 0; attempt < o.opts.ReadyAttempts; attempt++ {
		img, err := o.bg.Image(w.page.ID)
		if err != nil {
			return nil, &ReadinessError{PageIndex: w.index, Err: err}
		}
		if img != nil {
			return img, nil
		}
		t := time.NewTimer(o.opts.ReadyInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, &ReadinessError{PageIndex: w.index, Err: ctx.Err()}
		case <-t.C:
		}
	}
	return nil, &ReadinessError{PageIndex: w.index}
}

func (o *Orchestrator) upload(ctx context.Context, log *slog.Logger, ref navigator.Ref, pages []Page) error {
	keys := make([]string, len(pages))
	for i, p := range pages {
		keys[i] = p.Key
	}
	targets, err := o.uploader.RequestUploadTargets(ctx, ref, keys)
	if err != nil {
		return &UploadError{Err: err, Status: statusOf(err)}
	}
	for _, k := range keys {
		if _, ok := targets[k]; !ok {
			return &UploadError{Key: k, Err: ErrMissingTarget}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.UploadParallel)
	for _, p := range pages {
		g.Go(func() error {
			if err := o.uploader.PutBytes(gctx, targets[p.Key], p.PNG); err != nil {
				return &UploadError{Key: p.Key, Status: statusOf(err), Err: err}
			}
			log.Debug("page uploaded", "page", p.Index+1, "key", p.Key, "bytes", len(p.PNG))
			return nil
		})
	}
	return g.Wait()
}
