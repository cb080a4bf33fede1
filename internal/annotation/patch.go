package annotation

import "slices"

// Patch is a single mutation of a Document.
type Patch interface {
	apply(Document) Document
}

// AppendStroke adds a finished stroke.
type AppendStroke struct{ Stroke Stroke }

// AppendRect adds a rectangle; it is normalized on the way in.
type AppendRect struct{ Rect Rect }

// AppendText adds a text label.
type AppendText struct{ Text Text }

// Clear removes every annotation.
type Clear struct{}

// Replace swaps the whole document, for instance when restoring a snapshot.
type Replace struct{ Document Document }

// Apply returns the document that results from applying p to d. The input
// document is left untouched; callers must use the returned value.
func Apply(d Document, p Patch) Document {
	if p == nil {
		return d
	}
	return p.apply(d)
}

func (p AppendStroke) apply(d Document) Document {
	s := p.Stroke
	s.Points = slices.Clone(s.Points)
	d.Strokes = append(slices.Clip(d.Strokes), s)
	return d
}

func (p AppendRect) apply(d Document) Document {
	d.Rects = append(slices.Clip(d.Rects), NormalizeRect(p.Rect))
	return d
}

func (p AppendText) apply(d Document) Document {
	d.Texts = append(slices.Clip(d.Texts), p.Text)
	return d
}

func (Clear) apply(Document) Document {
	return Document{}
}

func (p Replace) apply(Document) Document {
	return p.Document.Clone()
}
