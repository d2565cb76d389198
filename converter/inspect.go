// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	rpdf "rsc.io/pdf"
)

// PageInfo describes a page of a written PDF.
type PageInfo struct {
	Number        int
	Width, Height float64
	// ImageWidth and ImageHeight are the pixel size of the first image on the page,
	// zero if the page has no image.
	ImageWidth, ImageHeight int
	// Alpha reports whether the image carries a soft mask.
	Alpha bool
	// Draw is where the first image is painted: x, y (from the bottom-left
	// corner), width and height, in points.
	Draw [4]float64
}

// Inspect reads the page sizes and the embedded image sizes of the PDF.
func Inspect(r io.ReaderAt, size int64) (infos []PageInfo, err error) {
	defer func() {
		// rsc.io/pdf panics on some malformed input
		if p := recover(); p != nil {
			err = fmt.Errorf("inspect: %v", p)
		}
	}()
	doc, err := rpdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	n := doc.NumPage()
	infos = make([]PageInfo, 0, n)
	for i := 1; i <= n; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			return infos, fmt.Errorf("page %d: missing", i)
		}
		info := PageInfo{Number: i}
		box := inherited(page.V, "MediaBox")
		if box.Kind() != rpdf.Array || box.Len() != 4 {
			return infos, fmt.Errorf("page %d: no MediaBox", i)
		}
		info.Width = box.Index(2).Float64() - box.Index(0).Float64()
		info.Height = box.Index(3).Float64() - box.Index(1).Float64()

		xobjs := page.Resources().Key("XObject")
		keys := xobjs.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			x := xobjs.Key(k)
			if x.Key("Subtype").Name() != "Image" {
				continue
			}
			info.ImageWidth = int(x.Key("Width").Int64())
			info.ImageHeight = int(x.Key("Height").Int64())
			info.Alpha = !x.Key("SMask").IsNull()
			break
		}
		if info.ImageWidth != 0 {
			content, err := readContents(page.V.Key("Contents"))
			if err != nil {
				return infos, fmt.Errorf("page %d: %w", i, err)
			}
			info.Draw, _ = imageDraw(content)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// InspectFile is Inspect for a file.
func InspectFile(fn string) ([]PageInfo, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	fi, err := fh.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, errors.New(fn + ": empty")
	}
	return Inspect(fh, fi.Size())
}

// inherited looks up the page attribute, walking up the page tree.
func inherited(v rpdf.Value, key string) rpdf.Value {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if a := v.Key(key); !a.IsNull() {
			return a
		}
		v = v.Key("Parent")
	}
	return rpdf.Value{}
}

// readContents concatenates the content streams of a page.
func readContents(v rpdf.Value) ([]byte, error) {
	if v.Kind() == rpdf.Array {
		var buf []byte
		for i := 0; i < v.Len(); i++ {
			b, err := readContents(v.Index(i))
			if err != nil {
				return buf, err
			}
			buf = append(append(buf, b...), '\n')
		}
		return buf, nil
	}
	if v.Kind() != rpdf.Stream {
		return nil, nil
	}
	rc := v.Reader()
	defer rc.Close()
	return io.ReadAll(rc)
}

type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m × n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2], m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2], m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4], m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// imageDraw follows the transformation matrix through the content stream,
// and returns the unit square mapped by it at the first Do operator.
// Rotation and skew are not expected, and ignored.
func imageDraw(content []byte) ([4]float64, bool) {
	ctm := identity
	var stack []matrix
	var nums []float64
	for _, tok := range strings.Fields(string(content)) {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			nums = append(nums, f)
			continue
		}
		switch tok {
		case "q":
			stack = append(stack, ctm)
		case "Q":
			if n := len(stack); n > 0 {
				ctm, stack = stack[n-1], stack[:n-1]
			}
		case "cm":
			if n := len(nums); n >= 6 {
				var m matrix
				copy(m[:], nums[n-6:])
				ctm = m.mul(ctm)
			}
		case "Do":
			return [4]float64{ctm[4], ctm[5], ctm[0], ctm[3]}, true
		}
		if !strings.HasPrefix(tok, "/") {
			nums = nums[:0]
		}
	}
	return [4]float64{}, false
}
