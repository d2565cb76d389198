// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"errors"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestLayout(t *testing.T) {
	for _, tc := range []struct {
		Name          string
		Width, Height int
		Want          []Strip
	}{
		{"square", 2480, 2480, []Strip{{Index: 0, Top: 0, Height: 2480}}},
		{"short", 100, 1, []Strip{{Index: 0, Top: 0, Height: 1}}},
		{"tall", 1000, 5000, []Strip{
			{Index: 0, Top: 0, Height: 2480},
			{Index: 1, Top: 2480, Height: 2480},
			{Index: 2, Top: 4960, Height: 40},
		}},
		{"exact", 10, 3 * PageHeight, []Strip{
			{Index: 0, Top: 0, Height: 2480},
			{Index: 1, Top: 2480, Height: 2480},
			{Index: 2, Top: 4960, Height: 2480},
		}},
		{"one more", 10, PageHeight + 1, []Strip{
			{Index: 0, Top: 0, Height: 2480},
			{Index: 1, Top: 2480, Height: 1},
		}},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := Layout(tc.Width, tc.Height, PageHeight)
			if err != nil {
				t.Fatal(err)
			}
			if d := pretty.Compare(got, tc.Want); d != "" {
				t.Errorf("Layout(%d, %d) mismatch (-got +want):\n%s", tc.Width, tc.Height, d)
			}
		})
	}
}

func TestLayoutProperties(t *testing.T) {
	for _, pageHeight := range []int{1, 7, 100, PageHeight} {
		for h := 1; h <= 3*pageHeight+2 && h < 10000; h += 1 + h/5 {
			strips, err := Layout(3, h, pageHeight)
			if err != nil {
				t.Fatalf("%d/%d: %v", h, pageHeight, err)
			}
			if want := (h + pageHeight - 1) / pageHeight; len(strips) != want {
				t.Errorf("%d/%d: got %d strips, wanted %d", h, pageHeight, len(strips), want)
			}
			next := 0
			for i, s := range strips {
				if s.Index != i || s.Top != next {
					t.Errorf("%d/%d: strip %d is %+v, wanted top %d", h, pageHeight, i, s, next)
				}
				if s.Height <= 0 || s.Height > pageHeight {
					t.Errorf("%d/%d: strip %d height %d", h, pageHeight, i, s.Height)
				}
				next += s.Height
			}
			if next != h {
				t.Errorf("%d/%d: strips cover %d rows, wanted %d", h, pageHeight, next, h)
			}
			last := strips[len(strips)-1].Height
			if want := h % pageHeight; want == 0 && last != pageHeight || want != 0 && last != want {
				t.Errorf("%d/%d: last strip is %d high", h, pageHeight, last)
			}
		}
	}
}

func TestLayoutErrors(t *testing.T) {
	for _, tc := range []struct {
		W, H, P int
		Want    error
	}{
		{0, 10, PageHeight, ErrImageDecode},
		{10, 0, PageHeight, ErrImageDecode},
		{-1, -1, PageHeight, ErrImageDecode},
		{10, 10, 0, ErrDocumentInit},
	} {
		if _, err := Layout(tc.W, tc.H, tc.P); !errors.Is(err, tc.Want) {
			t.Errorf("Layout(%d, %d, %d): got %v, wanted %v", tc.W, tc.H, tc.P, err, tc.Want)
		}
	}
}

func TestPlacement(t *testing.T) {
	for _, tc := range []struct {
		Strip Strip
		Want  Placement
		PdfY  int
	}{
		{Strip{Height: 2480}, Placement{X: 0, Y: 0, Width: 1000, Height: 2480}, 0},
		{Strip{Index: 2, Top: 4960, Height: 40}, Placement{X: 0, Y: 2440, Width: 1000, Height: 40}, 0},
	} {
		got := tc.Strip.Placement(1000, PageHeight)
		if d := pretty.Compare(got, tc.Want); d != "" {
			t.Errorf("%+v: %s", tc.Strip, d)
		}
		if y := got.pdfY(PageHeight); y != tc.PdfY {
			t.Errorf("%+v: pdf y=%d, wanted %d", tc.Strip, y, tc.PdfY)
		}
	}
}
