// Copyright 2017, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// StripImage returns the rows of the strip, keeping the pixel format of img.
func StripImage(img image.Image, s Strip) image.Image {
	b := img.Bounds()
	r := image.Rect(b.Min.X, b.Min.Y+s.Top, b.Max.X, b.Min.Y+s.Top+s.Height).Intersect(b)
	if si, ok := img.(subImager); ok {
		return si.SubImage(r)
	}
	dst := image.NewNRGBA64(r)
	draw.Draw(dst, r, img, r.Min, draw.Src)
	return dst
}

var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// EncodePNG re-encodes the image losslessly as PNG, keeping its channels (alpha, palette).
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: png encode: %w", ErrImageEmbed, err)
	}
	return buf.Bytes(), nil
}

// decodePNG decodes an encoded strip.
func decodePNG(b []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: png decode: %w", ErrImageEmbed, err)
	}
	return img, nil
}

// pngConfig returns the dimensions of an encoded strip.
func pngConfig(b []byte) (image.Config, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return cfg, fmt.Errorf("%w: png header: %w", ErrImageEmbed, err)
	}
	return cfg, nil
}
