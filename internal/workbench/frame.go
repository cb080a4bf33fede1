package workbench

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/example/grademark/internal/annotation"
	"github.com/example/grademark/internal/render"
)

func (w *Workbench) stageRect() image.Rectangle {
	return image.Rect(0, toolbarHeight, w.width, w.height-statusHeight)
}

// drawFrame paints the whole window into dst.
func (w *Workbench) drawFrame(dst *image.RGBA) error {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(w.st.Toolbar), image.Point{}, draw.Src)
	err := w.drawStage(dst)
	w.drawToolbar(dst)
	w.drawStatus(dst)
	return err
}

// scene collects what the stage shows right now, including in-flight
// gestures.
func (w *Workbench) scene() (render.Scene, render.Stage) {
	var sc render.Scene
	if p, ok := w.nav.Current(); ok {
		if img, err := w.bg.Image(p.ID); err == nil {
			sc.Background = img
		}
	}
	sc.Document = w.ctrl.Document()
	if r, ok := w.ctrl.Preview(); ok {
		sc.Preview = &r
	}
	if r, ok := w.ctrl.SelectionBounds(); ok {
		sc.Highlight = &r
	}
	if ed := w.ctrl.Editor(); ed.Open {
		sc.Editor = &annotation.Text{
			X:        ed.Pos.X,
			Y:        ed.Pos.Y,
			Text:     ed.Value + "|",
			Color:    w.ctrl.Color(),
			FontSize: w.ctrl.FontSize(),
		}
	}
	maxW := float64(w.width)
	if w.opts.StageWidth > 0 && w.opts.StageWidth < maxW {
		maxW = w.opts.StageWidth
	}
	return sc, render.StageFor(sc.Background, maxW)
}

func (w *Workbench) drawStage(dst *image.RGBA) error {
	area := w.stageRect()
	if w.nav.Count() == 0 {
		drawLabel(dst, "this submission has no pages", area.Min.X+12, area.Min.Y+24, w.st.StatusText)
		return nil
	}
	sc, stage := w.scene()
	img, err := render.Compose(sc, render.Options{Stage: stage, PixelRatio: 1, Style: w.st, View: w.ctrl.Viewport()})
	if err != nil {
		return err
	}
	dr := img.Bounds().Add(area.Min).Intersect(area)
	draw.Draw(dst, dr, img, dr.Min.Sub(area.Min), draw.Src)
	return nil
}

func (w *Workbench) drawToolbar(dst *image.RGBA) {
	draw.Draw(dst, image.Rect(0, 0, w.width, toolbarHeight), image.NewUniform(w.st.Toolbar), image.Point{}, draw.Src)
	for i, b := range w.buttons {
		state := stateDefault
		if tool, ok := toolActions[b.action]; ok && tool == w.ctrl.Tool() {
			state = statePressed
		} else if i == w.hover {
			state = stateHover
		}
		b.draw(dst, w.st, state)
	}
}

func (w *Workbench) drawStatus(dst *image.RGBA) {
	r := image.Rect(0, w.height-statusHeight, w.width, w.height)
	draw.Draw(dst, r, image.NewUniform(w.st.Toolbar), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), image.NewUniform(w.st.ToolbarText), image.Point{}, draw.Src)
	drawLabel(dst, w.status(), 6, r.Min.Y+15, w.st.StatusText)
	if w.message != "" && now().Before(w.messageUntil) {
		col := w.st.StatusText
		if w.warning {
			col = w.st.StatusWarning
		}
		drawLabel(dst, w.message, w.width-textWidth(w.message)-6, r.Min.Y+15, col)
	}
}

func (w *Workbench) status() string {
	ref := w.nav.Ref().String()
	if w.nav.Count() == 0 {
		return ref + "  no pages"
	}
	s := fmt.Sprintf("%s  page %d/%d  %s %s %gpx  %.0f%%",
		ref, w.nav.Index()+1, w.nav.Count(), w.ctrl.Tool(), w.ctrl.Color(), w.ctrl.Size(), w.ctrl.Viewport().Scale*100)
	if w.ctrl.Dirty() {
		s += "  unsaved"
	}
	if p, ok := w.nav.Current(); ok {
		img, err := w.bg.Image(p.ID)
		switch {
		case err != nil:
			s += "  image unavailable"
		case img == nil:
			s += "  loading"
		}
	}
	return s
}
