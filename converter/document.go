// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"fmt"
	"io"
	"strings"
)

const (
	// EnginePdfCPU is the default engine. It keeps the alpha channel and 16-bit samples.
	EnginePdfCPU = "pdfcpu"
	// EngineGoPDF writes 8-bit RGB images: transparency is lost.
	EngineGoPDF = "gopdf"
)

// Document is an append-only sequence of pages, serialized once.
// Sizes are in points; one pixel is one point.
type Document interface {
	// AddPage appends a width x height page holding the PNG-encoded strip at pl.
	AddPage(width, height int, pl Placement, png []byte) error
	// Encode serializes the document.
	Encode(w io.Writer) error
}

// NewDocument returns an empty Document of the named engine.
func NewDocument(engine string) (Document, error) {
	switch strings.ToLower(engine) {
	case "", EnginePdfCPU:
		return newPdfCPUDocument(), nil
	case EngineGoPDF:
		return newGoPDFDocument(), nil
	}
	return nil, fmt.Errorf("%w: unknown engine %q", ErrDocumentInit, engine)
}

func checkPage(width, height int, pl Placement) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: page size %dx%d", ErrDocumentInit, width, height)
	}
	if pl.X < 0 || pl.Y < 0 || pl.X+pl.Width > width || pl.Y+pl.Height > height {
		return fmt.Errorf("%w: placement %+v outside of %dx%d page", ErrImageEmbed, pl, width, height)
	}
	return nil
}
