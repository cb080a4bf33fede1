package main

import (
	"context"
	"fmt"

	"github.com/example/grademark/internal/logging"
)

// pagesCmd lists the page images of a submission.
type pagesCmd struct {
	cmdBase
	sub refFlag
}

func parsePagesCmd(args []string, r *root) (*pagesCmd, error) {
	c := &pagesCmd{cmdBase: newBase(r, "pages")}
	c.fs.Usage = usageFunc(c)
	c.fs.Var(&c.sub, "submission", "submission to list as `class/lesson/student`")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if !c.sub.set || c.fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *pagesCmd) Run() error {
	ctx := context.Background()
	cl, err := c.client()
	if err != nil {
		return err
	}
	ref := c.sub.ref
	pages, err := cl.FetchPages(ctx, ref)
	if err != nil {
		return fmt.Errorf("pages %s: %w", ref, err)
	}
	w := c.out()
	if d, err := cl.Detail(ctx, ref); err != nil {
		logging.Logger().Warn("homework detail unavailable", "submission", ref.String(), "err", err)
	} else {
		if d.Question != "" {
			fmt.Fprintf(w, "question: %s\n", d.Question)
		}
		if d.Status != "" {
			fmt.Fprintf(w, "status:   %s\n", d.Status)
		}
		if d.Score != nil {
			fmt.Fprintf(w, "score:    %d\n", *d.Score)
		}
		if d.Comment != "" {
			fmt.Fprintf(w, "comment:  %s\n", d.Comment)
		}
	}
	if len(pages) == 0 {
		fmt.Fprintln(w, "no pages submitted")
		return nil
	}
	drafts := map[string]bool{}
	for _, id := range c.store().Pages(ref.ID()) {
		drafts[id] = true
	}
	fmt.Fprintln(w, "pages (* marks a page with a draft):")
	for i, p := range pages {
		marker := " "
		if drafts[p.ID] {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %2d: %s %s\n", marker, i+1, p.ID, p.URL)
	}
	return nil
}
