// Package style holds the colour presets used to draw annotations and the
// grading window.
package style

import (
	"image/color"
)

// Style is a named colour preset.
type Style struct {
	Name string

	// Annotations
	Pen    color.RGBA // colour given to new annotations
	Stroke color.RGBA // strokes stored without a colour
	Rect   color.RGBA // rectangles stored without a colour
	Text   color.RGBA // text labels stored without a colour

	// Page
	Stage     color.RGBA // behind a page image that has not loaded
	Selection color.RGBA // outline of the shape picked with the pan tool
	Editor    color.RGBA // outline of the open text editor

	// Window chrome
	Toolbar       color.RGBA
	ToolbarText   color.RGBA
	Button        color.RGBA
	ButtonActive  color.RGBA
	ButtonText    color.RGBA
	StatusText    color.RGBA
	StatusWarning color.RGBA
}

// Default returns the built-in light preset.
func Default() *Style {
	return &Style{
		Name:          "Default",
		Pen:           color.RGBA{0xff, 0x00, 0x00, 0xff},
		Stroke:        color.RGBA{0xfa, 0xad, 0x14, 0xff},
		Rect:          color.RGBA{0xff, 0x4d, 0x4f, 0xff},
		Text:          color.RGBA{0x16, 0x77, 0xff, 0xff},
		Stage:         color.RGBA{0xff, 0xff, 0xff, 0xff},
		Selection:     color.RGBA{0x16, 0x77, 0xff, 0xff},
		Editor:        color.RGBA{0x8c, 0x8c, 0x8c, 0xff},
		Toolbar:       color.RGBA{0xf0, 0xf0, 0xf0, 0xff},
		ToolbarText:   color.RGBA{0x00, 0x00, 0x00, 0xff},
		Button:        color.RGBA{0xd9, 0xd9, 0xd9, 0xff},
		ButtonActive:  color.RGBA{0x91, 0xca, 0xff, 0xff},
		ButtonText:    color.RGBA{0x00, 0x00, 0x00, 0xff},
		StatusText:    color.RGBA{0x26, 0x26, 0x26, 0xff},
		StatusWarning: color.RGBA{0xcf, 0x13, 0x22, 0xff},
	}
}
