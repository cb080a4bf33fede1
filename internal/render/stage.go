package render

import "image"

const (
	// DefaultStageWidth is the widest the stage is laid out.
	DefaultStageWidth = 1000
	// DefaultPixelRatio is the export resolution multiplier.
	DefaultPixelRatio = 2
	// fallbackAspect is height/width used before the page image is known.
	fallbackAspect = 4.0 / 3.0
)

// Stage is the drawing surface size in stage pixels. Content coordinates
// equal stage coordinates at zoom 1.
type Stage struct {
	Width, Height float64
}

// StageFor lays out a stage no wider than maxWidth (DefaultStageWidth when
// zero) whose height follows the page image's aspect ratio. A page whose
// image is not known yet is laid out at 3:4.
func StageFor(bg image.Image, maxWidth float64) Stage {
	w := float64(DefaultStageWidth)
	if maxWidth > 0 && maxWidth < w {
		w = maxWidth
	}
	aspect := fallbackAspect
	if bg != nil {
		b := bg.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			aspect = float64(b.Dy()) / float64(b.Dx())
		}
	}
	return Stage{Width: w, Height: w * aspect}
}

// Pixels returns the raster size of the stage at the given pixel ratio.
func (s Stage) Pixels(ratio float64) (int, int) {
	if ratio <= 0 {
		ratio = 1
	}
	w := int(s.Width*ratio + 0.5)
	h := int(s.Height*ratio + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
