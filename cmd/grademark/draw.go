package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/grademark/internal/annotate"
	"github.com/example/grademark/internal/annotation"
	"github.com/example/grademark/internal/style"
)

// drawCmd adds one annotation to a page draft without opening a window.
// Coordinates are page units at zoom 1.
type drawCmd struct {
	cmdBase
	sub       refFlag
	page      int
	colorSpec string
	color     string
	width     float64
	fontSize  float64
	shape     string
	coords    []float64
	text      string
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	c := &drawCmd{cmdBase: newBase(r, "draw")}
	c.fs.Usage = usageFunc(c)
	c.fs.Var(&c.sub, "submission", "submission as `class/lesson/student`")
	c.fs.IntVar(&c.page, "page", 1, "page number to annotate")
	c.fs.StringVar(&c.colorSpec, "color", r.config.Editor.PenColor, "stroke color name or hex value")
	c.fs.Float64Var(&c.width, "width", r.config.Editor.PenSize, "stroke width in page units")
	c.fs.Float64Var(&c.fontSize, "font-size", annotation.DefaultFontSize, "text size in page units")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	positionals := c.fs.Args()
	if !c.sub.set || len(positionals) < 1 {
		return nil, &UsageError{of: c}
	}
	col, err := style.ParseColor(c.colorSpec)
	if err != nil {
		return nil, err
	}
	c.color = style.Hex(col)
	if c.width <= 0 {
		return nil, errors.New("width must be positive")
	}
	if c.fontSize <= 0 {
		c.fontSize = annotation.DefaultFontSize
	}

	c.shape = strings.ToLower(positionals[0])
	remaining := positionals[1:]
	switch c.shape {
	case "freehand", "pen":
		c.shape = "freehand"
		if len(remaining) < 4 || len(remaining)%2 != 0 {
			return nil, errors.New("freehand requires at least two x y pairs")
		}
		c.coords, err = expectFloats(remaining, len(remaining), c.shape)
	case "rect":
		c.coords, err = expectFloats(remaining, 4, c.shape)
		if err == nil && (c.coords[0] == c.coords[2] || c.coords[1] == c.coords[3]) {
			err = errors.New("rect requires two distinct corners")
		}
	case "text":
		if len(remaining) < 3 {
			return nil, errors.New("text requires x y and content")
		}
		c.coords, err = expectFloats(remaining[:2], 2, c.shape)
		c.text = strings.Join(remaining[2:], " ")
		if err == nil && strings.TrimSpace(c.text) == "" {
			err = errors.New("text content cannot be empty")
		}
	case "clear":
		if len(remaining) != 0 {
			err = errors.New("clear takes no arguments")
		}
	default:
		return nil, fmt.Errorf("unsupported shape %q", c.shape)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func expectFloats(args []string, n int, shape string) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d numeric arguments", shape, n)
	}
	vals := make([]float64, n)
	for i, raw := range args {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}

func (c *drawCmd) Run() error {
	ctx := context.Background()
	s, err := c.openSession(ctx, c.sub.ref,
		annotate.WithColor(c.color),
		annotate.WithSize(c.width),
		annotate.WithFontSize(c.fontSize),
	)
	if err != nil {
		return err
	}
	if err := s.goToPage(c.page); err != nil {
		return err
	}
	ctrl := s.nav.Controller()
	if c.shape == "clear" {
		s.nav.ClearCurrent()
		fmt.Fprintf(c.out(), "cleared %s page %d\n", c.sub.ref, c.page)
		return nil
	}
	c.apply(ctrl)
	if err := s.nav.SaveCurrent(true); err != nil {
		return err
	}
	strokes, rects, texts := ctrl.Document().Counts()
	fmt.Fprintf(c.out(), "%s page %d: %d stroke(s), %d rectangle(s), %d text label(s)\n", c.sub.ref, c.page, strokes, rects, texts)
	return nil
}

// apply replays the shape as pointer gestures so it takes the same path
// as drawing in the window.
func (c *drawCmd) apply(ctrl *annotate.Controller) {
	switch c.shape {
	case "freehand":
		ctrl.SetTool(annotate.ToolFreehand)
		ctrl.PointerDown(c.coords[0], c.coords[1])
		for i := 2; i < len(c.coords); i += 2 {
			ctrl.PointerMove(c.coords[i], c.coords[i+1])
		}
		n := len(c.coords)
		ctrl.PointerUp(c.coords[n-2], c.coords[n-1])
	case "rect":
		ctrl.SetTool(annotate.ToolRect)
		ctrl.PointerDown(c.coords[0], c.coords[1])
		ctrl.PointerMove(c.coords[2], c.coords[3])
		ctrl.PointerUp(c.coords[2], c.coords[3])
	case "text":
		ctrl.SetTool(annotate.ToolText)
		ctrl.PointerDown(c.coords[0], c.coords[1])
		ctrl.SetText(c.text)
		ctrl.Commit()
	}
}
