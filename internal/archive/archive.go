// Package archive collects flattened pages into a single PDF so a graded
// submission can be kept offline.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ErrNoPages is returned when there is nothing to archive.
var ErrNoPages = errors.New("archive: no pages")

const (
	defaultMargin = 24
	footerHeight  = 18
	footerFont    = 9
)

// Page is one flattened page. Width and Height are the stage size in
// stage pixels; the PDF page is laid out one point per stage pixel.
type Page struct {
	Label  string
	PNG    []byte
	Width  float64
	Height float64
}

// Options sets document metadata and layout.
type Options struct {
	Title   string
	Author  string
	Margin  float64
	Created time.Time
}

// Write renders pages to w as a PDF document with one page per entry.
func Write(w io.Writer, pages []Page, opts Options) error {
	pdf, err := build(pages, opts)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// WriteFile writes the PDF to path.
func WriteFile(path string, pages []Page, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, pages, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func build(pages []Page, opts Options) (*gofpdf.Fpdf, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	margin := opts.Margin
	if margin <= 0 {
		margin = defaultMargin
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetCreator("grademark", false)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	if !opts.Created.IsZero() {
		pdf.SetCreationDate(opts.Created)
	}

	for i, p := range pages {
		if len(p.PNG) == 0 {
			return nil, fmt.Errorf("archive: page %d has no image", i+1)
		}
		w, h := p.Width, p.Height
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("archive: page %d has no size", i+1)
		}
		orientation := "P"
		if w > h {
			orientation = "L"
		}
		pdf.AddPageFormat(orientation, gofpdf.SizeType{Wd: w + 2*margin, Ht: h + 2*margin + footerHeight})

		name := "page" + strconv.Itoa(i)
		imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(p.PNG))
		pdf.ImageOptions(name, margin, margin, w, h, false, imgOpts, 0, "")

		label := p.Label
		if label == "" {
			label = "Page " + strconv.Itoa(i+1)
		}
		pdf.SetFont("Helvetica", "", footerFont)
		pdf.SetTextColor(96, 96, 96)
		pdf.Text(margin, margin+h+footerHeight, label)

		if pdf.Err() {
			return nil, fmt.Errorf("archive: page %d: %w", i+1, pdf.Error())
		}
	}
	return pdf, nil
}
