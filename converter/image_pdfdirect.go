// Copyright 2017, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"fmt"
	"io"

	"bitbucket.org/zombiezen/gopdf/pdf"
)

// goPDFDocument draws the strips directly with gopdf.
// Images are stored as Flate-compressed RGB samples; alpha is dropped.
type goPDFDocument struct {
	doc   *pdf.Document
	pages int
}

func newGoPDFDocument() *goPDFDocument { return &goPDFDocument{doc: pdf.New()} }

func (d *goPDFDocument) AddPage(width, height int, pl Placement, png []byte) error {
	if err := checkPage(width, height, pl); err != nil {
		return err
	}
	img, err := decodePNG(png)
	if err != nil {
		return err
	}
	if ib := img.Bounds().Size(); ib.X != pl.Width || ib.Y != pl.Height {
		return fmt.Errorf("%w: strip is %dx%d, placement wants %dx%d", ErrImageEmbed, ib.X, ib.Y, pl.Width, pl.Height)
	}

	canvas := d.doc.NewPage(pdf.Unit(width), pdf.Unit(height))
	y := pdf.Unit(pl.pdfY(height))
	canvas.DrawImage(img, pdf.Rectangle{
		Min: pdf.Point{X: pdf.Unit(pl.X), Y: y},
		Max: pdf.Point{X: pdf.Unit(pl.X + pl.Width), Y: y + pdf.Unit(pl.Height)},
	})
	if err = canvas.Close(); err != nil {
		return fmt.Errorf("%w: close page %d: %w", ErrImageEmbed, d.pages+1, err)
	}
	d.pages++
	return nil
}

func (d *goPDFDocument) Encode(w io.Writer) error {
	if d.pages == 0 {
		return fmt.Errorf("%w: no pages", ErrDocumentWrite)
	}
	if err := d.doc.Encode(w); err != nil {
		return fmt.Errorf("%w: %w", ErrDocumentWrite, err)
	}
	return nil
}
