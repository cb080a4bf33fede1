package workbench

import (
	"image"
	"math"
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/grademark/internal/annotate"
)

// shortcut is a key binding. Bindings match either a rune or a key code,
// together with the held modifiers.
type shortcut struct {
	Rune rune
	Code key.Code
	Mods key.Modifiers
}

var toolActions = map[string]annotate.Tool{
	"pan":  annotate.ToolPan,
	"pen":  annotate.ToolFreehand,
	"rect": annotate.ToolRect,
	"text": annotate.ToolText,
}

// configure builds the toolbar and binds every action to its keys.
func (w *Workbench) configure() {
	w.actions = map[string]func(){}
	w.keys = map[shortcut]string{}
	register := func(name string, fn func(), keys ...shortcut) {
		w.actions[name] = fn
		for _, k := range keys {
			w.keys[k] = name
		}
	}

	for name, tool := range toolActions {
		register(name, func() { w.ctrl.SetTool(tool) })
	}
	w.keys[shortcut{Rune: 'm'}] = "pan"
	w.keys[shortcut{Rune: 'b'}] = "pen"
	w.keys[shortcut{Rune: 'x'}] = "rect"
	w.keys[shortcut{Rune: 't'}] = "text"

	register("undo", func() { w.ctrl.Undo() }, shortcut{Rune: 'z', Mods: key.ModControl})
	register("redo", func() { w.ctrl.Redo() }, shortcut{Rune: 'y', Mods: key.ModControl})
	register("clear", w.ctrl.Clear, shortcut{Code: key.CodeDeleteForward})
	register("prev", w.turn(w.nav.Prev), shortcut{Code: key.CodeLeftArrow}, shortcut{Code: key.CodePageUp})
	register("next", w.turn(w.nav.Next), shortcut{Code: key.CodeRightArrow}, shortcut{Code: key.CodePageDown})
	register("zoomin", w.zoom(true), shortcut{Rune: '+'}, shortcut{Rune: '='}, shortcut{Code: key.CodeKeypadPlusSign})
	register("zoomout", w.zoom(false), shortcut{Rune: '-'}, shortcut{Code: key.CodeKeypadHyphenMinus})
	register("reset", func() { w.ctrl.Viewport().Reset() }, shortcut{Rune: '0'})
	register("copy", w.copyPage, shortcut{Rune: 'c', Mods: key.ModControl})
	register("save", func() {
		if err := w.nav.SaveCurrent(true); err != nil {
			w.warn("save draft: %v", err)
			return
		}
		w.say("draft saved")
	}, shortcut{Rune: 's', Mods: key.ModControl})
	register("drop", func() {
		w.nav.ClearCurrent()
		w.say("draft of page %d removed", w.nav.Index()+1)
	}, shortcut{Code: key.CodeDeleteForward, Mods: key.ModControl})
	register("submit", w.submit, shortcut{Code: key.CodeReturnEnter, Mods: key.ModControl})
	register("cancel", w.cancel, shortcut{Code: key.CodeEscape, Mods: key.ModControl})
	register("quit", func() {
		w.ctrl.EndGesture()
		w.quit = true
	}, shortcut{Rune: 'q'})

	w.buttons = []*button{
		{label: "M:Move", action: "pan"},
		{label: "B:Pen", action: "pen"},
		{label: "X:Rect", action: "rect"},
		{label: "T:Text", action: "text"},
		{label: "Undo", action: "undo", group: 1},
		{label: "Redo", action: "redo", group: 1},
		{label: "Clear", action: "clear", group: 1},
		{label: "< Prev", action: "prev", group: 2},
		{label: "Next >", action: "next", group: 2},
		{label: "+", action: "zoomin", group: 3},
		{label: "-", action: "zoomout", group: 3},
		{label: "1:1", action: "reset", group: 3},
		{label: "Copy", action: "copy", group: 4},
		{label: "Save", action: "save", group: 4},
		{label: "Drop draft", action: "drop", group: 4},
		{label: "Submit", action: "submit", group: 4},
		{label: "Cancel", action: "cancel", group: 4},
	}
	layoutButtons(w.buttons)
}

// turn wraps a page move so a failed save of the page being left shows
// in the status line.
func (w *Workbench) turn(move func() error) func() {
	return func() {
		if err := move(); err != nil {
			w.warn("page not changed: %v", err)
		}
	}
}

func (w *Workbench) zoom(in bool) func() {
	return func() {
		sr := w.stageRect()
		v := w.ctrl.Viewport()
		if in {
			v.ZoomIn(float64(sr.Dx()), float64(sr.Dy()))
		} else {
			v.ZoomOut(float64(sr.Dx()), float64(sr.Dy()))
		}
	}
}

func (w *Workbench) run(action string) {
	if fn, ok := w.actions[action]; ok {
		fn()
	}
}

// handleMouse routes a mouse event to the toolbar or, in stage
// coordinates, to the controller. It reports whether a repaint is needed.
// A release always ends the gesture in flight; other events outside the
// stage never reach the controller.
func (w *Workbench) handleMouse(e mouse.Event) bool {
	p := image.Point{X: int(e.X), Y: int(e.Y)}
	onStage := p.In(w.stageRect())
	changed := false
	if p.Y < toolbarHeight {
		i := buttonAt(w.buttons, p)
		if e.Direction == mouse.DirPress && e.Button == mouse.ButtonLeft {
			if i >= 0 {
				w.ctrl.EndGesture()
				w.run(w.buttons[i].action)
			}
			return true
		}
		changed = i != w.hover
		w.hover = i
	} else if w.hover != -1 {
		w.hover = -1
		changed = true
	}

	if e.Direction == mouse.DirRelease {
		if onStage {
			e.Y -= toolbarHeight
			w.ctrl.HandleMouse(e)
		} else {
			// No usable position: a rectangle keeps its last extent.
			w.ctrl.PointerUp(math.NaN(), math.NaN())
		}
		return true
	}
	if !onStage {
		return changed
	}
	e.Y -= toolbarHeight
	w.ctrl.HandleMouse(e)
	return true
}

// handleKey feeds the open text editor first and otherwise runs the bound
// action. It reports whether a repaint is needed.
func (w *Workbench) handleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	if e.Modifiers&key.ModControl == 0 && w.ctrl.HandleKey(e) {
		return true
	}
	if name, ok := w.lookup(e); ok {
		w.run(name)
		return true
	}
	return false
}

func (w *Workbench) lookup(e key.Event) (string, bool) {
	mods := e.Modifiers &^ key.ModShift
	r := unicode.ToLower(e.Rune)
	if mods&key.ModControl != 0 && e.Code >= key.CodeA && e.Code <= key.CodeZ {
		r = 'a' + rune(e.Code-key.CodeA)
	}
	if r > 0 {
		if name, ok := w.keys[shortcut{Rune: r, Mods: mods}]; ok {
			return name, true
		}
	}
	name, ok := w.keys[shortcut{Code: e.Code, Mods: e.Modifiers}]
	return name, ok
}
