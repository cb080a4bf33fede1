package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/example/grademark/internal/annotation"
)

// draftsCmd inspects and removes stored drafts. It never contacts the
// grading API.
type draftsCmd struct {
	cmdBase
	sub    refFlag
	pageID string
	action string
}

func parseDraftsCmd(args []string, r *root) (*draftsCmd, error) {
	c := &draftsCmd{cmdBase: newBase(r, "drafts")}
	c.fs.Usage = usageFunc(c)
	c.fs.Var(&c.sub, "submission", "submission as `class/lesson/student`")
	c.fs.StringVar(&c.pageID, "page-id", "", "page image id for show and clear")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if !c.sub.set || c.fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.action = c.fs.Arg(0)
	switch c.action {
	case "list", "clear-all":
	case "show", "clear":
		if c.pageID == "" {
			return nil, fmt.Errorf("%s requires -page-id", c.action)
		}
	default:
		return nil, fmt.Errorf("unknown drafts command: %s", c.action)
	}
	return c, nil
}

func (c *draftsCmd) Run() error {
	store := c.store()
	id := c.sub.ref.ID()
	w := c.out()
	switch c.action {
	case "list":
		pages := store.Pages(id)
		if len(pages) == 0 {
			fmt.Fprintf(w, "no drafts for %s\n", c.sub.ref)
			return nil
		}
		for _, p := range pages {
			doc, ok := store.Load(id, p)
			if !ok {
				fmt.Fprintf(w, "%s: unreadable\n", p)
				continue
			}
			strokes, rects, texts := doc.Counts()
			fmt.Fprintf(w, "%s: %d stroke(s), %d rectangle(s), %d text label(s)\n", p, strokes, rects, texts)
		}
	case "show":
		doc, ok := store.Load(id, c.pageID)
		if !ok {
			return fmt.Errorf("no draft for page %s", c.pageID)
		}
		raw, err := annotation.Marshal(doc)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(w)
		return err
	case "clear":
		store.Clear(id, c.pageID)
		fmt.Fprintf(w, "cleared draft of page %s\n", c.pageID)
	case "clear-all":
		store.ClearAll(id)
		fmt.Fprintf(w, "cleared all drafts of %s\n", c.sub.ref)
	}
	return nil
}
