// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, gradient(7, 9)))
	img, ct, err := DecodeImage(bytes.NewReader(buf.Bytes()), Limits{})
	require.NoError(t, err)
	assert.Equal(t, "image/bmp", ct)
	assert.Equal(t, image.Pt(7, 9), img.Bounds().Size())
}

func TestDecodeImageKeepsFormat(t *testing.T) {
	src := image.NewGray16(image.Rect(0, 0, 3, 3))
	src.SetGray16(1, 1, color.Gray16{Y: 0x1234})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	img, _, err := DecodeImage(&buf, Limits{})
	require.NoError(t, err)
	g, ok := img.(*image.Gray16)
	require.True(t, ok, "got %T", img)
	assert.Equal(t, color.Gray16{Y: 0x1234}, g.Gray16At(1, 1))
}

func TestDecodeImageErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gradient(100, 50)))
	valid := buf.Bytes()

	for name, tc := range map[string]struct {
		Input  []byte
		Limits Limits
	}{
		"empty":       {Input: nil},
		"text":        {Input: []byte(strings.Repeat("plain text, not an image\n", 10))},
		"pdf":         {Input: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")},
		"truncated":   {Input: valid[:len(valid)/2]},
		"pixels":      {Input: valid, Limits: Limits{MaxPixels: 100*50 - 1}},
		"dimension":   {Input: valid, Limits: Limits{MaxDimension: 99}},
		"header only": {Input: valid[:33]},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeImage(bytes.NewReader(tc.Input), tc.Limits)
			assert.ErrorIs(t, err, ErrImageDecode)
		})
	}
}

// withComment inserts a COM segment right after the SOI marker,
// pushing the frame header far from the start of the stream.
func withComment(t *testing.T, jpg []byte, n int) []byte {
	t.Helper()
	require.True(t, bytes.HasPrefix(jpg, []byte{0xff, 0xd8}))
	seg := []byte{0xff, 0xfe, byte((n + 2) >> 8), byte(n + 2)}
	seg = append(seg, bytes.Repeat([]byte{'x'}, n)...)
	out := append([]byte{0xff, 0xd8}, seg...)
	return append(out, jpg[2:]...)
}

func TestDecodeImageLongHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradient(100, 50), nil))
	long := withComment(t, buf.Bytes(), 8000)
	require.Greater(t, len(long)-len(buf.Bytes()), sniffLen)

	img, ct, err := DecodeImage(bytes.NewReader(long), Limits{})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, image.Pt(100, 50), img.Bounds().Size())

	// the frame header alone must trip the limit, before the scan data is read
	sof := bytes.Index(long, []byte{0xff, 0xc0})
	require.Greater(t, sof, sniffLen)
	cut := long[:sof+2+17]
	_, _, err = DecodeImage(bytes.NewReader(cut), Limits{MaxPixels: 100})
	require.ErrorIs(t, err, ErrImageDecode)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestLimits(t *testing.T) {
	l := Limits{MaxPixels: DefaultMaxPixels, MaxDimension: DefaultMaxDimension}
	assert.NoError(t, l.check(1000, 5000))
	assert.ErrorIs(t, l.check(0, 1), ErrImageDecode)
	assert.ErrorIs(t, l.check(DefaultMaxDimension+1, 1), ErrImageDecode)
	assert.ErrorIs(t, l.check(10000, 10000), ErrImageDecode)
	assert.NoError(t, Limits{}.check(100000, 100000))
}
