package annotate

import (
	"math"
	"unicode/utf8"

	"github.com/example/grademark/internal/annotation"
)

// Kind names the annotation type of a selection.
type Kind int

const (
	KindNone Kind = iota
	KindStroke
	KindRect
	KindText
)

// Selection identifies the annotation picked with the pan tool. Selection
// only affects how the page is drawn.
type Selection struct {
	Kind  Kind
	Index int
}

// Selected returns the current selection.
func (c *Controller) Selected() Selection { return c.selection }

// SelectionBounds returns the content-space box of the selected annotation.
func (c *Controller) SelectionBounds() (annotation.Rect, bool) {
	sel := c.selection
	switch sel.Kind {
	case KindText:
		if sel.Index < len(c.doc.Texts) {
			return textBounds(c.doc.Texts[sel.Index]), true
		}
	case KindRect:
		if sel.Index < len(c.doc.Rects) {
			return c.doc.Rects[sel.Index], true
		}
	case KindStroke:
		if sel.Index < len(c.doc.Strokes) {
			return strokeBounds(c.doc.Strokes[sel.Index]), true
		}
	}
	return annotation.Rect{}, false
}

// hitTolerance is measured in screen pixels.
const hitTolerance = 4

// hitTest returns the top-most annotation under p. Texts are drawn above
// strokes, which are drawn above rectangles.
func (c *Controller) hitTest(p annotation.Point) Selection {
	tol := hitTolerance / c.view.Scale
	for i := len(c.doc.Texts) - 1; i >= 0; i-- {
		if textBounds(c.doc.Texts[i]).Contains(p, tol) {
			return Selection{Kind: KindText, Index: i}
		}
	}
	for i := len(c.doc.Strokes) - 1; i >= 0; i-- {
		if strokeHit(c.doc.Strokes[i], p, tol) {
			return Selection{Kind: KindStroke, Index: i}
		}
	}
	for i := len(c.doc.Rects) - 1; i >= 0; i-- {
		if c.doc.Rects[i].Contains(p, tol) {
			return Selection{Kind: KindRect, Index: i}
		}
	}
	return Selection{}
}

// textBounds approximates a label's box from its rune count.
func textBounds(t annotation.Text) annotation.Rect {
	size := t.Size()
	return annotation.Rect{
		X:      t.X,
		Y:      t.Y,
		Width:  float64(utf8.RuneCountInString(t.Text)) * size * 0.6,
		Height: size,
	}
}

func strokeBounds(s annotation.Stroke) annotation.Rect {
	if len(s.Points) == 0 {
		return annotation.Rect{X: s.OriginX, Y: s.OriginY}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range s.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	pad := s.StrokeWidth / 2
	return annotation.Rect{
		X:      s.OriginX + minX - pad,
		Y:      s.OriginY + minY - pad,
		Width:  maxX - minX + 2*pad,
		Height: maxY - minY + 2*pad,
	}
}

func strokeHit(s annotation.Stroke, p annotation.Point, tol float64) bool {
	reach := s.StrokeWidth/2 + tol
	q := annotation.Point{X: p.X - s.OriginX, Y: p.Y - s.OriginY}
	if len(s.Points) == 1 {
		return math.Hypot(q.X-s.Points[0].X, q.Y-s.Points[0].Y) <= reach
	}
	for i := 1; i < len(s.Points); i++ {
		if segmentDistance(q, s.Points[i-1], s.Points[i]) <= reach {
			return true
		}
	}
	return false
}

func segmentDistance(p, a, b annotation.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
