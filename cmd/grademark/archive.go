package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/grademark/internal/archive"
	"github.com/example/grademark/internal/export"
)

// archiveCmd writes every annotated page of a submission into one PDF.
type archiveCmd struct {
	cmdBase
	sub    refFlag
	output string
}

func parseArchiveCmd(args []string, r *root) (*archiveCmd, error) {
	c := &archiveCmd{cmdBase: newBase(r, "archive")}
	c.fs.Usage = usageFunc(c)
	c.fs.Var(&c.sub, "submission", "submission as `class/lesson/student`")
	c.fs.StringVar(&c.output, "output", "", "PDF file to write (default <class>_<lesson>_<student>.pdf)")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if !c.sub.set || c.fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *archiveCmd) Run() error {
	ctx := context.Background()
	ref := c.sub.ref
	s, err := c.openSession(ctx, ref)
	if err != nil {
		return err
	}
	pages, err := export.New(s.nav, s.bg, nil, nil, c.exportOptions()).Render(ctx)
	if errors.Is(err, export.ErrNothingToUpload) {
		return fmt.Errorf("archive %s: no page has annotations", ref)
	}
	if err != nil {
		return fmt.Errorf("archive %s: %w", ref, err)
	}

	out := make([]archive.Page, 0, len(pages))
	for _, p := range pages {
		out = append(out, archive.Page{
			Label:  fmt.Sprintf("%s page %d (%s)", ref, p.Index+1, p.Key),
			PNG:    p.PNG,
			Width:  p.Stage.Width,
			Height: p.Stage.Height,
		})
	}
	path := c.output
	if path == "" {
		path = ref.ID() + ".pdf"
	}
	if err := archive.WriteFile(path, out, archive.Options{Title: ref.String(), Author: c.program, Created: time.Now()}); err != nil {
		return fmt.Errorf("archive %s: %w", ref, err)
	}
	fmt.Fprintf(c.out(), "wrote %s (%d page(s))\n", path, len(out))
	if c.notifier != nil {
		c.notifier.Rendered(path)
	}
	return nil
}
