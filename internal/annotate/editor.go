package annotate

import (
	"strings"
	"unicode/utf8"

	"github.com/example/grademark/internal/annotation"
)

// Editor is the inline text field opened by the text tool.
type Editor struct {
	Open  bool
	Pos   annotation.Point
	Value string
}

// Editor returns the text editor state.
func (c *Controller) Editor() Editor { return c.editor }

// TypeRune appends r to the open editor.
func (c *Controller) TypeRune(r rune) {
	if c.editor.Open {
		c.editor.Value += string(r)
	}
}

// Backspace removes the last rune from the open editor.
func (c *Controller) Backspace() {
	if !c.editor.Open || c.editor.Value == "" {
		return
	}
	_, n := utf8.DecodeLastRuneInString(c.editor.Value)
	c.editor.Value = c.editor.Value[:len(c.editor.Value)-n]
}

// SetText replaces the open editor's value.
func (c *Controller) SetText(s string) {
	if c.editor.Open {
		c.editor.Value = s
	}
}

// Commit closes the editor. A non-blank value is trimmed and added as a text
// label at the editor position; it reports whether a label was added.
func (c *Controller) Commit() bool {
	if !c.editor.Open {
		return false
	}
	e := c.editor
	c.editor = Editor{}
	v := strings.TrimSpace(e.Value)
	if v == "" {
		return false
	}
	c.snapshot()
	c.apply(annotation.AppendText{Text: annotation.Text{
		X:        e.Pos.X,
		Y:        e.Pos.Y,
		Text:     v,
		Color:    c.color,
		FontSize: c.fontSize,
	}})
	return true
}

// Cancel closes the editor without changing the document.
func (c *Controller) Cancel() {
	c.editor = Editor{}
}
