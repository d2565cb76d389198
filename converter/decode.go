// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	_ "image/gif"  // to be able to open GIF files
	_ "image/jpeg" // to be able to open JPEG files
	_ "image/png"  // to be able to open PNG files

	_ "golang.org/x/image/bmp"  // to be able to open BMP files
	_ "golang.org/x/image/tiff" // to be able to open TIFF files
)

const (
	// DefaultMaxPixels is roughly 64Mpx, keeping RGBA buffers under 256MiB.
	DefaultMaxPixels = 64 << 20
	// DefaultMaxDimension caps width and height separately.
	DefaultMaxDimension = 1<<16 - 1
)

// sniffLen is the number of bytes peeked for content type detection.
const sniffLen = 3072

// Limits bounds the accepted image sizes.
type Limits struct {
	MaxPixels, MaxDimension int
}

func (l Limits) check(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: image bounds invalid (%d x %d)", ErrImageDecode, width, height)
	}
	if l.MaxDimension > 0 && (width > l.MaxDimension || height > l.MaxDimension) {
		return fmt.Errorf("%w: image dimension exceeds limit (%d x %d > %d)", ErrImageDecode, width, height, l.MaxDimension)
	}
	if pixels := int64(width) * int64(height); l.MaxPixels > 0 && pixels > int64(l.MaxPixels) {
		return fmt.Errorf("%w: image pixel count %d exceeds limit %d", ErrImageDecode, pixels, l.MaxPixels)
	}
	return nil
}

// DecodeImage decodes a PNG, JPEG, GIF, BMP or TIFF image.
// The returned string is the detected content type.
func DecodeImage(r io.Reader, limits Limits) (image.Image, string, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if len(head) == 0 {
		if err == nil || err == io.EOF {
			return nil, "", fmt.Errorf("%w: empty input", ErrImageDecode)
		}
		return nil, "", fmt.Errorf("%w: %w", ErrImageDecode, err)
	}
	contentType, _ := MIMEMatch(head)
	if !IsImageType(contentType) {
		return nil, contentType, fmt.Errorf("%w: unsupported content type %q", ErrImageDecode, contentType)
	}

	// the header is kept, so the limits are checked before any pixel is allocated
	var hdr bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(br, &hdr))
	if err != nil {
		return nil, contentType, fmt.Errorf("%w: %s header: %w", ErrImageDecode, contentType, err)
	}
	if err = limits.check(cfg.Width, cfg.Height); err != nil {
		return nil, contentType, err
	}

	img, format2, err := image.Decode(io.MultiReader(&hdr, br))
	if err != nil {
		return nil, contentType, fmt.Errorf("%w: %s: %w", ErrImageDecode, contentType, err)
	}
	if format == "" {
		format = format2
	}
	b := img.Bounds()
	if err = limits.check(b.Dx(), b.Dy()); err != nil {
		return nil, contentType, err
	}
	logger.V(1).Info("decoded", "contentType", contentType, "format", format, "width", b.Dx(), "height", b.Dy())
	return img, contentType, nil
}

// DecodeFile opens and decodes the image file.
func DecodeFile(fn string, limits Limits) (image.Image, string, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrImageDecode, err)
	}
	defer fh.Close()
	return DecodeImage(fh, limits)
}

// DecodeFileConfig returns the dimensions of the image file, without decoding it.
func DecodeFileConfig(fn string) (image.Config, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %w", ErrImageDecode, err)
	}
	defer fh.Close()
	cfg, _, err := image.DecodeConfig(bufio.NewReader(fh))
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrImageDecode, err)
	}
	return cfg, nil
}
