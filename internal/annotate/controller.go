// Package annotate turns pointer gestures into annotation document edits.
//
// A Controller owns the document of the active page together with its undo
// history and viewport. Every gesture that changes the document snapshots
// it first, so Undo always returns to the state before the gesture.
package annotate

import (
	"strings"

	"github.com/example/grademark/internal/annotation"
	"github.com/example/grademark/internal/history"
	"github.com/example/grademark/internal/logging"
	"github.com/example/grademark/internal/viewport"
)

const (
	// DefaultColor is the initial pen colour.
	DefaultColor = "#ff0000"
	// DefaultSize is the initial pen width.
	DefaultSize = 3
	// MinSize and MaxSize bound the pen width.
	MinSize = 1
	MaxSize = 20
	// DefaultMaxStrokePoints caps the points recorded for one stroke.
	DefaultMaxStrokePoints = 10000
)

// Controller interprets pointer input for the active page.
// It is not safe for concurrent use.
type Controller struct {
	tool      Tool
	color     string
	size      float64
	fontSize  float64
	maxPoints int

	doc   annotation.Document
	hist  *history.Stack
	view  *viewport.Viewport
	dirty bool

	// in-flight gesture state
	stroke      *annotation.Stroke
	rectStart   annotation.Point
	rectPreview *annotation.Rect
	panning     bool
	panX, panY  float64

	editor    Editor
	selection Selection
}

// Option configures a Controller.
type Option func(*Controller)

// WithTool sets the initial tool.
func WithTool(t Tool) Option { return func(c *Controller) { c.tool = t } }

// WithColor sets the pen colour used by new annotations.
func WithColor(col string) Option { return func(c *Controller) { c.color = col } }

// WithSize sets the pen width.
func WithSize(size float64) Option { return func(c *Controller) { c.size = size } }

// WithFontSize sets the font size stored on new text labels. Zero keeps the
// document default.
func WithFontSize(size float64) Option { return func(c *Controller) { c.fontSize = size } }

// WithViewport uses v instead of a fresh identity viewport.
func WithViewport(v *viewport.Viewport) Option { return func(c *Controller) { c.view = v } }

// WithHistoryLimit bounds the undo stack.
func WithHistoryLimit(n int) Option { return func(c *Controller) { c.hist = history.New(n) } }

// WithMaxStrokePoints bounds the number of points in one stroke.
func WithMaxStrokePoints(n int) Option { return func(c *Controller) { c.maxPoints = n } }

// New creates a controller with an empty document.
func New(opts ...Option) *Controller {
	c := &Controller{
		tool:      ToolFreehand,
		color:     DefaultColor,
		size:      DefaultSize,
		maxPoints: DefaultMaxStrokePoints,
	}
	for _, o := range opts {
		o(c)
	}
	if c.hist == nil {
		c.hist = history.New(0)
	}
	if c.view == nil {
		c.view = viewport.New()
	}
	if c.maxPoints <= 0 {
		c.maxPoints = DefaultMaxStrokePoints
	}
	c.size = clampSize(c.size)
	return c
}

func clampSize(s float64) float64 {
	if s < MinSize {
		return MinSize
	}
	if s > MaxSize {
		return MaxSize
	}
	return s
}

// Tool returns the active tool.
func (c *Controller) Tool() Tool { return c.tool }

// SetTool switches tools. Any gesture in progress is finished first and an
// open text editor is committed, as if it had lost focus.
func (c *Controller) SetTool(t Tool) {
	if t == c.tool {
		return
	}
	c.EndGesture()
	c.tool = t
	if t != ToolPan {
		c.selection = Selection{}
	}
}

// Color returns the pen colour.
func (c *Controller) Color() string { return c.color }

// SetColor changes the pen colour for subsequent annotations.
func (c *Controller) SetColor(col string) {
	if col = strings.TrimSpace(col); col != "" {
		c.color = col
	}
}

// Size returns the pen width.
func (c *Controller) Size() float64 { return c.size }

// SetSize changes the pen width, clamped to [MinSize, MaxSize].
func (c *Controller) SetSize(s float64) { c.size = clampSize(s) }

// FontSize returns the size given to new text labels.
func (c *Controller) FontSize() float64 { return c.fontSize }

// Viewport returns the controller's viewport.
func (c *Controller) Viewport() *viewport.Viewport { return c.view }

// Document returns the current document, including a stroke that is still
// being drawn.
func (c *Controller) Document() annotation.Document {
	if c.stroke != nil {
		return annotation.Apply(c.doc, annotation.AppendStroke{Stroke: *c.stroke})
	}
	return c.doc
}

// Preview returns the rectangle being dragged, if any. It is not part of
// the document until the pointer is released.
func (c *Controller) Preview() (annotation.Rect, bool) {
	if c.rectPreview == nil {
		return annotation.Rect{}, false
	}
	return *c.rectPreview, true
}

// Dirty reports whether the document changed since it was loaded or last
// marked clean.
func (c *Controller) Dirty() bool { return c.dirty }

// MarkClean clears the dirty flag after the document has been saved.
func (c *Controller) MarkClean() { c.dirty = false }

// CanUndo reports whether Undo would change the document.
func (c *Controller) CanUndo() bool { return c.hist.CanUndo() }

// CanRedo reports whether Redo would change the document.
func (c *Controller) CanRedo() bool { return c.hist.CanRedo() }

// Load installs doc as the active document. History, gesture state, the
// text editor and the dirty flag are reset; the viewport is kept.
func (c *Controller) Load(doc annotation.Document) {
	c.stroke = nil
	c.rectPreview = nil
	c.panning = false
	c.editor = Editor{}
	c.selection = Selection{}
	c.doc = doc.Clone()
	c.hist.Reset()
	c.dirty = false
}

func (c *Controller) snapshot() {
	c.hist.Snapshot(c.doc)
}

func (c *Controller) apply(p annotation.Patch) {
	c.doc = annotation.Apply(c.doc, p)
	c.dirty = true
}

// Undo restores the document as it was before the latest gesture.
func (c *Controller) Undo() bool {
	c.EndGesture()
	doc, ok := c.hist.Undo(c.doc)
	if ok {
		c.doc = doc
		c.dirty = true
		c.selection = Selection{}
	}
	return ok
}

// Redo reapplies the latest undone gesture.
func (c *Controller) Redo() bool {
	c.EndGesture()
	doc, ok := c.hist.Redo(c.doc)
	if ok {
		c.doc = doc
		c.dirty = true
		c.selection = Selection{}
	}
	return ok
}

// Clear removes every annotation as one undoable gesture. Clearing an
// empty document does nothing.
func (c *Controller) Clear() {
	c.EndGesture()
	if c.doc.IsEmpty() {
		return
	}
	c.snapshot()
	c.apply(annotation.Clear{})
	c.selection = Selection{}
}

// EndGesture completes whatever is in flight: a stroke is committed, a
// rectangle drag is committed at its last extent, a pan stops and an open
// text editor is committed.
func (c *Controller) EndGesture() {
	c.finishStroke()
	c.finishRect()
	c.panning = false
	if c.editor.Open {
		c.Commit()
	}
}

// PointerDown starts a gesture at a screen position.
func (c *Controller) PointerDown(sx, sy float64) {
	p, ok := c.content(sx, sy)
	if !ok {
		logging.Logger().Debug("pointer down outside stage ignored", "tool", c.tool.String())
		return
	}
	// Clicking anywhere else takes focus from an open text editor.
	if c.editor.Open {
		c.Commit()
	}
	switch c.tool {
	case ToolPan:
		c.panning = true
		c.panX, c.panY = sx, sy
		c.selection = c.hitTest(p)
	case ToolFreehand:
		c.finishStroke()
		c.snapshot()
		c.stroke = &annotation.Stroke{
			Points:      []annotation.Point{p},
			StrokeWidth: c.size,
			Color:       c.color,
		}
		c.dirty = true
	case ToolRect:
		c.finishRect()
		c.rectStart = p
		c.rectPreview = &annotation.Rect{X: p.X, Y: p.Y, Color: c.color, StrokeWidth: c.size}
	case ToolText:
		c.editor = Editor{Open: true, Pos: p}
	}
}

// PointerMove continues the active gesture.
func (c *Controller) PointerMove(sx, sy float64) {
	p, ok := c.content(sx, sy)
	if !ok {
		return
	}
	switch c.tool {
	case ToolPan:
		if c.panning {
			c.view.PanBy(sx-c.panX, sy-c.panY)
			c.panX, c.panY = sx, sy
		}
	case ToolFreehand:
		if c.stroke != nil && len(c.stroke.Points) < c.maxPoints {
			c.stroke.Points = append(c.stroke.Points, p)
		}
	case ToolRect:
		if c.rectPreview != nil {
			c.rectPreview.Width = p.X - c.rectStart.X
			c.rectPreview.Height = p.Y - c.rectStart.Y
		}
	case ToolText:
	}
}

// PointerUp ends the active gesture.
func (c *Controller) PointerUp(sx, sy float64) {
	switch c.tool {
	case ToolPan:
		c.panning = false
	case ToolFreehand:
		c.finishStroke()
	case ToolRect:
		if c.rectPreview != nil {
			if p, ok := c.content(sx, sy); ok {
				c.rectPreview.Width = p.X - c.rectStart.X
				c.rectPreview.Height = p.Y - c.rectStart.Y
			}
		}
		c.finishRect()
	case ToolText:
	}
}

// Wheel zooms around the pointer; deltaY > 0 zooms out.
func (c *Controller) Wheel(sx, sy, deltaY float64) {
	c.view.Wheel(sx, sy, deltaY)
}

func (c *Controller) content(sx, sy float64) (annotation.Point, bool) {
	x, y, ok := c.view.ToContent(sx, sy)
	return annotation.Point{X: x, Y: y}, ok
}

func (c *Controller) finishStroke() {
	if c.stroke == nil {
		return
	}
	s := *c.stroke
	c.stroke = nil
	c.apply(annotation.AppendStroke{Stroke: s})
}

func (c *Controller) finishRect() {
	if c.rectPreview == nil {
		return
	}
	r := annotation.NormalizeRect(*c.rectPreview)
	c.rectPreview = nil
	if r.Width == 0 && r.Height == 0 {
		// A click without a drag leaves no mark and no history entry.
		return
	}
	// The preview lives outside the document, so the snapshot taken here
	// equals the document at pointer-down.
	c.snapshot()
	c.apply(annotation.AppendRect{Rect: r})
}
