// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"fmt"
)

// PageHeight is the default maximal strip height (A4 at ~300dpi), in pixels.
// Every page is this high, regardless of the strip it holds.
const PageHeight = 2480

// Strip is a horizontal band of the source image: rows [Top, Top+Height).
type Strip struct {
	Index  int
	Top    int
	Height int
}

// Placement is where a strip is drawn on its page.
// Y is the offset of the strip's top edge from the page's top edge.
type Placement struct {
	X, Y          int
	Width, Height int
}

// Layout partitions an image of width x height pixels into strips at most
// pageHeight tall, top to bottom.
func Layout(width, height, pageHeight int) ([]Strip, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty image (%dx%d)", ErrImageDecode, width, height)
	}
	if pageHeight <= 0 {
		return nil, fmt.Errorf("%w: page height %d", ErrDocumentInit, pageHeight)
	}
	strips := make([]Strip, 0, (height+pageHeight-1)/pageHeight)
	for i := 0; i < height; i += pageHeight {
		strips = append(strips, Strip{
			Index:  len(strips),
			Top:    i,
			Height: min(pageHeight, height-i),
		})
	}
	return strips, nil
}

// Placement returns the strip's position on a width x pageHeight page:
// at native size, left-aligned, with its bottom edge on the page bottom.
func (s Strip) Placement(width, pageHeight int) Placement {
	return Placement{X: 0, Y: pageHeight - s.Height, Width: width, Height: s.Height}
}

// pdfY returns the bottom-left-origin y coordinate of the placement
// on a page of the given height.
func (p Placement) pdfY(pageHeight int) int { return pageHeight - p.Y - p.Height }
