package main

import (
	"context"
	"fmt"

	"github.com/example/grademark/internal/export"
	"github.com/example/grademark/internal/workbench"
)

// annotateCmd opens the grading window for a submission.
type annotateCmd struct {
	cmdBase
	sub     refFlag
	page    int
	score   int
	comment commentFlags
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	c := &annotateCmd{cmdBase: newBase(r, "annotate")}
	c.fs.Usage = usageFunc(c)
	c.fs.Var(&c.sub, "submission", "submission to grade as `class/lesson/student`")
	c.fs.IntVar(&c.page, "page", 1, "page to open first")
	c.fs.IntVar(&c.score, "score", export.MaxScore, "score recorded by the Submit button (0-100)")
	c.comment.register(c.fs)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if !c.sub.set || c.fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if err := validScore(c.score); err != nil {
		return nil, err
	}
	if err := c.comment.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *annotateCmd) Run() error {
	ctx := context.Background()
	s, err := c.openSession(ctx, c.sub.ref)
	if err != nil {
		return err
	}
	if s.nav.Count() > 0 {
		if err := s.goToPage(c.page); err != nil {
			return err
		}
	}
	comment, err := c.comment.resolve(ctx, s.client, c.sub.ref)
	if err != nil {
		return err
	}
	opts := c.exportOptions()
	orch := export.New(s.nav, s.bg, s.client, s.client, opts)
	wb := workbench.New(s.nav, s.bg, orch, workbench.Options{
		Style:      c.activeStyle,
		Notifier:   c.notifier,
		Score:      c.score,
		Comment:    comment,
		PixelRatio: opts.PixelRatio,
		StageWidth: opts.StageWidth,
	})
	if err := wb.Run(); err != nil {
		return fmt.Errorf("annotate %s: %w", c.sub.ref, err)
	}
	if wb.Cancelled() {
		fmt.Fprintf(c.out(), "grading of %s cancelled, drafts removed\n", c.sub.ref)
		return nil
	}
	if res := wb.Result(); res != nil {
		fmt.Fprintf(c.out(), "graded %s: %d page(s) uploaded\n", res.Ref, len(res.Pages))
	}
	return nil
}
