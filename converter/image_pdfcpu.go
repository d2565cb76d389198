// Copyright 2023, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pdfCPUDocument collects the PNG strips and imports them with pdfcpu,
// one image per page, anchored to the bottom-left corner at native size.
// PNG alpha is kept as a soft mask.
type pdfCPUDocument struct {
	strips        [][]byte
	width, height int
}

func newPdfCPUDocument() *pdfCPUDocument { return &pdfCPUDocument{} }

func (d *pdfCPUDocument) AddPage(width, height int, pl Placement, png []byte) error {
	if err := checkPage(width, height, pl); err != nil {
		return err
	}
	if len(d.strips) == 0 {
		d.width, d.height = width, height
	} else if width != d.width || height != d.height {
		return fmt.Errorf("%w: page %d is %dx%d, pdfcpu needs uniform %dx%d pages",
			ErrImageEmbed, len(d.strips)+1, width, height, d.width, d.height)
	}
	if pl.X != 0 || pl.pdfY(height) != 0 {
		return fmt.Errorf("%w: pdfcpu supports bottom-left anchored strips only, got %+v", ErrImageEmbed, pl)
	}
	cfg, err := pngConfig(png)
	if err != nil {
		return err
	}
	if cfg.Width != pl.Width || cfg.Height != pl.Height {
		return fmt.Errorf("%w: strip is %dx%d, placement wants %dx%d", ErrImageEmbed, cfg.Width, cfg.Height, pl.Width, pl.Height)
	}
	d.strips = append(d.strips, png)
	return nil
}

func (d *pdfCPUDocument) Encode(w io.Writer) error {
	if len(d.strips) == 0 {
		return fmt.Errorf("%w: no pages", ErrDocumentWrite)
	}
	imp, err := api.Import(
		fmt.Sprintf("dimensions:%d %d, position:bl, scalefactor:1 abs", d.width, d.height),
		types.POINTS)
	if err != nil {
		return fmt.Errorf("%w: import description: %w", ErrDocumentInit, err)
	}
	rs := make([]io.Reader, len(d.strips))
	for i, b := range d.strips {
		rs[i] = bytes.NewReader(b)
	}
	if err = api.ImportImages(nil, w, rs, imp, nil); err != nil {
		return fmt.Errorf("%w: pdfcpu import: %w", ErrDocumentWrite, err)
	}
	return nil
}

// Validate validates the PDF file with pdfcpu, in relaxed mode.
func Validate(fn string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(fn, conf); err != nil {
		return fmt.Errorf("%w: validate %s: %w", ErrDocumentWrite, fn, err)
	}
	return nil
}

// PageCount returns the number of pages with pdfcpu.
func PageCount(rs io.ReadSeeker) (int, error) {
	return api.PageCount(rs, nil)
}
