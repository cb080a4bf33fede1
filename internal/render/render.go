// Package render rasterizes a page: its background image with the
// annotation document drawn on top.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/example/grademark/internal/annotation"
	"github.com/example/grademark/internal/style"
	"github.com/example/grademark/internal/viewport"
)

// Tension is the smoothing applied to freehand strokes.
const Tension = 0.5

// RectDash is the dash pattern of rectangle outlines, in stage pixels.
var RectDash = []float64{6, 4}

// Scene is everything drawn for one page.
type Scene struct {
	Background image.Image
	Document   annotation.Document
	// Preview is a rectangle still being dragged.
	Preview *annotation.Rect
	// Highlight outlines a selected annotation's bounds.
	Highlight *annotation.Rect
	// Editor is the text being typed, drawn with an outline.
	Editor *annotation.Text
}

// Options controls how a Scene is rasterized.
type Options struct {
	Stage      Stage
	PixelRatio float64
	Style      *style.Style
	// View is the zoom and pan applied to the page. Nil draws at zoom 1.
	View *viewport.Viewport
}

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func face(size float64) (text.Face, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("load font: %w", fontErr)
	}
	return fontSource.Face(size), nil
}

// Compose draws the scene into a new image of Stage.Pixels(PixelRatio).
func Compose(sc Scene, opts Options) (*image.RGBA, error) {
	dc, err := compose(sc, opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	src := dc.Image()
	out := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out, nil
}

// PNG composes the scene and encodes it as PNG.
func PNG(sc Scene, opts Options) ([]byte, error) {
	dc, err := compose(sc, opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	return buf.Bytes(), nil
}

func compose(sc Scene, opts Options) (*gg.Context, error) {
	st := opts.Style
	if st == nil {
		st = style.Default()
	}
	ratio := opts.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	stage := opts.Stage
	if stage.Width <= 0 || stage.Height <= 0 {
		stage = StageFor(sc.Background, 0)
	}
	w, h := stage.Pixels(ratio)

	scale, ox, oy := 1.0, 0.0, 0.0
	if opts.View != nil {
		scale, ox, oy = opts.View.Scale, opts.View.OffsetX, opts.View.OffsetY
	}
	tr := transform{k: scale * ratio, dx: ox * ratio, dy: oy * ratio}

	base := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(base, base.Bounds(), image.NewUniform(st.Stage), image.Point{}, draw.Src)
	if sc.Background != nil {
		// The background is stretched over the whole stage.
		x0, y0 := tr.apply(0, 0)
		x1, y1 := tr.apply(stage.Width, stage.Height)
		dr := image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
		xdraw.CatmullRom.Scale(base, dr, sc.Background, sc.Background.Bounds(), xdraw.Over, nil)
	}

	dc := gg.NewContextForImage(base)
	ok := false
	defer func() {
		if !ok {
			dc.Close()
		}
	}()
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	doc := sc.Document
	for _, r := range doc.Rects {
		if err := drawRect(dc, tr, r, style.ColorOr(r.Color, st.Rect), true); err != nil {
			return nil, err
		}
	}
	if sc.Preview != nil {
		r := annotation.NormalizeRect(*sc.Preview)
		if err := drawRect(dc, tr, r, style.ColorOr(r.Color, st.Rect), true); err != nil {
			return nil, err
		}
	}
	for _, s := range doc.Strokes {
		if err := drawStroke(dc, tr, s, style.ColorOr(s.Color, st.Stroke)); err != nil {
			return nil, err
		}
	}
	for _, t := range doc.Texts {
		if err := drawText(dc, tr, t, style.ColorOr(t.Color, st.Text)); err != nil {
			return nil, err
		}
	}
	if sc.Editor != nil {
		if err := drawEditor(dc, tr, *sc.Editor, style.ColorOr(sc.Editor.Color, st.Text), st.Editor); err != nil {
			return nil, err
		}
	}
	if sc.Highlight != nil {
		hl := *sc.Highlight
		hl.StrokeWidth = 1 / scale
		if err := drawRect(dc, tr, hl, st.Selection, false); err != nil {
			return nil, err
		}
	}

	ok = true
	return dc, nil
}

type transform struct {
	k, dx, dy float64
}

func (t transform) apply(x, y float64) (float64, float64) {
	return x*t.k + t.dx, y*t.k + t.dy
}

func drawRect(dc *gg.Context, tr transform, r annotation.Rect, c color.Color, dashed bool) error {
	if r.Width == 0 && r.Height == 0 {
		return nil
	}
	x, y := tr.apply(r.X, r.Y)
	dc.SetColor(c)
	dc.SetLineWidth(lineWidth(r.StrokeWidth) * tr.k)
	if dashed {
		dc.SetDash(RectDash[0]*tr.k, RectDash[1]*tr.k)
		defer dc.ClearDash()
	}
	dc.DrawRectangle(x, y, r.Width*tr.k, r.Height*tr.k)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("draw rectangle: %w", err)
	}
	return nil
}

func lineWidth(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

func drawStroke(dc *gg.Context, tr transform, s annotation.Stroke, c color.Color) error {
	if len(s.Points) == 0 {
		return nil
	}
	pts := make([]annotation.Point, len(s.Points))
	for i, p := range s.Points {
		x, y := tr.apply(p.X+s.OriginX, p.Y+s.OriginY)
		pts[i] = annotation.Point{X: x, Y: y}
	}
	width := lineWidth(s.StrokeWidth) * tr.k
	dc.SetColor(c)
	if len(pts) == 1 {
		dc.DrawCircle(pts[0].X, pts[0].Y, width/2)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("draw stroke: %w", err)
		}
		return nil
	}
	dc.SetLineWidth(width)
	tracePath(dc, pts, Tension)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("draw stroke: %w", err)
	}
	return nil
}

// tracePath builds a cardinal spline through pts. Each interior point gets
// two control points along the chord of its neighbours, split in proportion
// to the adjacent segment lengths.
func tracePath(dc *gg.Context, pts []annotation.Point, tension float64) {
	dc.MoveTo(pts[0].X, pts[0].Y)
	if len(pts) == 2 || tension == 0 {
		for _, p := range pts[1:] {
			dc.LineTo(p.X, p.Y)
		}
		return
	}
	n := len(pts)
	before := make([]annotation.Point, n)
	after := make([]annotation.Point, n)
	for i := 1; i < n-1; i++ {
		before[i], after[i] = controlPoints(pts[i-1], pts[i], pts[i+1], tension)
	}
	dc.QuadraticTo(before[1].X, before[1].Y, pts[1].X, pts[1].Y)
	for i := 1; i < n-2; i++ {
		dc.CubicTo(after[i].X, after[i].Y, before[i+1].X, before[i+1].Y, pts[i+1].X, pts[i+1].Y)
	}
	dc.QuadraticTo(after[n-2].X, after[n-2].Y, pts[n-1].X, pts[n-1].Y)
}

func controlPoints(prev, p, next annotation.Point, tension float64) (annotation.Point, annotation.Point) {
	d01 := math.Hypot(p.X-prev.X, p.Y-prev.Y)
	d12 := math.Hypot(next.X-p.X, next.Y-p.Y)
	if d01+d12 == 0 {
		return p, p
	}
	fa := tension * d01 / (d01 + d12)
	fb := tension * d12 / (d01 + d12)
	cx, cy := next.X-prev.X, next.Y-prev.Y
	return annotation.Point{X: p.X - fa*cx, Y: p.Y - fa*cy},
		annotation.Point{X: p.X + fb*cx, Y: p.Y + fb*cy}
}

func drawText(dc *gg.Context, tr transform, t annotation.Text, c color.Color) error {
	if t.Text == "" {
		return nil
	}
	f, err := face(t.Size() * tr.k)
	if err != nil {
		return err
	}
	x, y := tr.apply(t.X, t.Y)
	dc.SetFont(f)
	dc.SetColor(c)
	// Labels are anchored at their top-left corner; DrawString takes the
	// baseline.
	dc.DrawString(t.Text, x, y+f.Metrics().Ascent)
	return nil
}

func drawEditor(dc *gg.Context, tr transform, t annotation.Text, c, outline color.Color) error {
	size := t.Size()
	box := annotation.Rect{X: t.X - 2, Y: t.Y - 2, Width: 200, Height: size + 4, StrokeWidth: 1 / tr.k}
	if f, err := face(size * tr.k); err == nil && t.Text != "" {
		dc.SetFont(f)
		if w, _ := dc.MeasureString(t.Text); w/tr.k+4 > box.Width {
			box.Width = w/tr.k + 4
		}
	}
	if err := drawRect(dc, tr, box, outline, false); err != nil {
		return err
	}
	return drawText(dc, tr, t, c)
}
