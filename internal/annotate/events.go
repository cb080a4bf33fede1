package annotate

import (
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
)

// HandleMouse feeds a window mouse event to the controller. Coordinates must
// already be relative to the stage's top-left corner.
func (c *Controller) HandleMouse(e mouse.Event) {
	x, y := float64(e.X), float64(e.Y)
	switch {
	case e.Button == mouse.ButtonWheelUp:
		c.Wheel(x, y, -1)
	case e.Button == mouse.ButtonWheelDown:
		c.Wheel(x, y, 1)
	case e.Direction == mouse.DirPress && e.Button == mouse.ButtonLeft:
		c.PointerDown(x, y)
	case e.Direction == mouse.DirRelease && e.Button == mouse.ButtonLeft:
		c.PointerUp(x, y)
	case e.Direction == mouse.DirNone:
		c.PointerMove(x, y)
	}
}

// HandleKey routes a key press to the open text editor and reports whether
// it was consumed. Enter commits, Escape cancels.
func (c *Controller) HandleKey(e key.Event) bool {
	if !c.editor.Open || e.Direction == key.DirRelease {
		return false
	}
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		c.Commit()
		return true
	case key.CodeEscape:
		c.Cancel()
		return true
	case key.CodeDeleteBackspace:
		c.Backspace()
		return true
	}
	if e.Rune > 0 && unicode.IsPrint(e.Rune) {
		c.TypeRune(e.Rune)
		return true
	}
	return false
}
