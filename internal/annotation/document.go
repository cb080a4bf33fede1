// Package annotation defines the vector markup drawn over one page image:
// freehand strokes, rectangles and text labels, all in content space.
package annotation

import "slices"

// DefaultFontSize is used for text labels that do not carry a size.
const DefaultFontSize = 28

// Point is a position in content space.
type Point struct {
	X, Y float64
}

// Stroke is a freehand polyline. Points are relative to the origin.
type Stroke struct {
	OriginX     float64
	OriginY     float64
	Points      []Point
	StrokeWidth float64
	Color       string
}

// Rect is an outlined rectangle. Stored rectangles are always normalized:
// Width and Height are non-negative and X, Y is the top-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
	Color         string
	StrokeWidth   float64
}

// Text is a single-line label anchored at its top-left corner.
type Text struct {
	X, Y     float64
	Text     string
	Color    string
	FontSize float64
}

// Size returns the font size, falling back to DefaultFontSize.
func (t Text) Size() float64 {
	if t.FontSize <= 0 {
		return DefaultFontSize
	}
	return t.FontSize
}

// Document is the annotation content of one page.
//
// Documents are values: operations return new Documents and never modify
// the slices of their input.
type Document struct {
	Strokes []Stroke
	Rects   []Rect
	Texts   []Text
}

// IsEmpty reports whether the document carries no annotation at all.
func (d Document) IsEmpty() bool {
	return len(d.Strokes) == 0 && len(d.Rects) == 0 && len(d.Texts) == 0
}

// Counts returns the number of strokes, rectangles and texts.
func (d Document) Counts() (strokes, rects, texts int) {
	return len(d.Strokes), len(d.Rects), len(d.Texts)
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{
		Rects: slices.Clone(d.Rects),
		Texts: slices.Clone(d.Texts),
	}
	if d.Strokes != nil {
		out.Strokes = make([]Stroke, len(d.Strokes))
		for i, s := range d.Strokes {
			s.Points = slices.Clone(s.Points)
			out.Strokes[i] = s
		}
	}
	return out
}

// Equal reports whether two documents hold the same annotations. Nil and
// empty sequences compare equal.
func (d Document) Equal(o Document) bool {
	return slices.EqualFunc(d.Strokes, o.Strokes, strokeEqual) &&
		slices.Equal(d.Rects, o.Rects) &&
		slices.Equal(d.Texts, o.Texts)
}

func strokeEqual(a, b Stroke) bool {
	return a.OriginX == b.OriginX && a.OriginY == b.OriginY &&
		a.StrokeWidth == b.StrokeWidth && a.Color == b.Color &&
		slices.Equal(a.Points, b.Points)
}

// NormalizeRect flips a rectangle with negative extent so that its width
// and height are non-negative and X, Y is the top-left corner.
func NormalizeRect(r Rect) Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Contains reports whether the point lies inside the rectangle, expanded by
// tolerance on every side. The rectangle is normalized first.
func (r Rect) Contains(p Point, tolerance float64) bool {
	n := NormalizeRect(r)
	return p.X >= n.X-tolerance && p.X <= n.X+n.Width+tolerance &&
		p.Y >= n.Y-tolerance && p.Y <= n.Y+n.Height+tolerance
}
