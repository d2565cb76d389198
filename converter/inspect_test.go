// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestInspectFile(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "out.pdf")
	fh, err := os.Create(fn)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = Convert(context.Background(), fh, gradient(50, 3000), Options{PageHeight: 1000}); err != nil {
		t.Fatal(err)
	}
	if err = fh.Close(); err != nil {
		t.Fatal(err)
	}

	infos, err := InspectFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 3 {
		t.Fatalf("got %d pages, wanted 3", len(infos))
	}
	for i, info := range infos {
		want := PageInfo{Number: i + 1, Width: 50, Height: 1000, ImageWidth: 50, ImageHeight: 1000}
		if info != want {
			t.Errorf("page %d: got %+v, wanted %+v", i+1, info, want)
		}
	}
}

func TestInspectGarbage(t *testing.T) {
	b := []byte("%PDF-1.4\nnot really\n")
	if _, err := Inspect(bytes.NewReader(b), int64(len(b))); err == nil {
		t.Error("wanted error for garbage")
	}
	if _, err := InspectFile(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("wanted error for missing file")
	}
}

func TestImageDraw(t *testing.T) {
	for name, tc := range map[string]struct {
		Content string
		Want    [4]float64
		OK      bool
	}{
		"plain":   {"q 1000 0 0 40 0 0 cm /Im0 Do Q", [4]float64{0, 0, 1000, 40}, true},
		"decimal": {"q\n1000.00 0.00 0.00 40.00 0.00 0.00 cm\n/Im0 Do\nQ\n", [4]float64{0, 0, 1000, 40}, true},
		"nested":  {"1 0 0 1 5 7 cm q 2 0 0 3 0 0 cm /I Do Q", [4]float64{5, 7, 2, 3}, true},
		"popped":  {"q 9 0 0 9 9 9 cm Q q 4 0 0 2 0 1 cm /I Do Q", [4]float64{0, 1, 4, 2}, true},
		"none":    {"q 1 0 0 1 0 0 cm Q", [4]float64{}, false},
	} {
		got, ok := imageDraw([]byte(tc.Content))
		if ok != tc.OK || got != tc.Want {
			t.Errorf("%s: got %v/%t, wanted %v/%t", name, got, ok, tc.Want, tc.OK)
		}
	}
}

func closeTo(a, b [4]float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 0.01 {
			return false
		}
	}
	return true
}
