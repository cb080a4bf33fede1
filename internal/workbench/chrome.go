package workbench

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/grademark/internal/style"
)

const (
	toolbarHeight = 28
	statusHeight  = 22
	buttonPad     = 6
	buttonGap     = 4
	groupGap      = 12
)

type buttonState int

const (
	stateDefault buttonState = iota
	stateHover
	statePressed
)

// button is a toolbar entry that runs a named action when clicked.
type button struct {
	label  string
	action string
	group  int
	rect   image.Rectangle
}

func (b *button) draw(dst *image.RGBA, st *style.Style, state buttonState) {
	bg := st.Button
	switch state {
	case stateHover:
		bg = darken(st.Button, 0.85)
	case statePressed:
		bg = st.ButtonActive
	}
	draw.Draw(dst, b.rect, image.NewUniform(bg), image.Point{}, draw.Src)
	outline(dst, b.rect, st.ToolbarText)
	drawLabel(dst, b.label, b.rect.Min.X+buttonPad, b.rect.Min.Y+16, st.ButtonText)
}

// layoutButtons places the buttons left to right along the toolbar, with a
// wider gap between groups.
func layoutButtons(buttons []*button) {
	x := buttonGap
	for i, b := range buttons {
		if i > 0 && b.group != buttons[i-1].group {
			x += groupGap - buttonGap
		}
		w := textWidth(b.label) + 2*buttonPad
		b.rect = image.Rect(x, 3, x+w, toolbarHeight-3)
		x += w + buttonGap
	}
}

func buttonAt(buttons []*button, p image.Point) int {
	for i, b := range buttons {
		if p.In(b.rect) {
			return i
		}
	}
	return -1
}

func textWidth(s string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil()
}

func drawLabel(dst *image.RGBA, s string, x, y int, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.Color) {
	u := image.NewUniform(c)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

func darken(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{R: uint8(float64(c.R) * f), G: uint8(float64(c.G) * f), B: uint8(float64(c.B) * f), A: c.A}
}
