// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgulacsi/stripdf/converter"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 0xff})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func writeTestPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	fn := filepath.Join(dir, "in.png")
	require.NoError(t, os.WriteFile(fn, pngBytes(t, w, h), 0644))
	return fn
}

type fakePrompter struct {
	in, out       string
	inErr, outErr error
	saveAsked     bool
}

func (p *fakePrompter) OpenImage(context.Context) (string, error) { return p.in, p.inErr }
func (p *fakePrompter) SavePDF(_ context.Context, suggested string) (string, error) {
	p.saveAsked = true
	return p.out, p.outErr
}

type notification struct {
	Title, Message string
	Severity       converter.Severity
}

type fakeNotifier struct{ got []notification }

func (n *fakeNotifier) Notify(title, message string, severity converter.Severity) {
	n.got = append(n.got, notification{Title: title, Message: message, Severity: severity})
}

func TestAppRun(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, 10, 2500)
	dest := filepath.Join(dir, "out.pdf")
	var n fakeNotifier
	p := fakePrompter{in: src, out: dest}
	err := newApp(&p, &n, converter.Options{PageHeight: 1000}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []notification{{"Success", "PDF saved successfully.", converter.SeverityInfo}}, n.got)

	infos, err := converter.InspectFile(dest)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	for i, want := range []int{1000, 1000, 500} {
		assert.Equal(t, want, infos[i].ImageHeight, "page %d", i+1)
		assert.Equal(t, float64(1000), infos[i].Height, "page %d", i+1)
	}
}

func TestAppCanceled(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, 10, 20)
	dest := filepath.Join(dir, "out.pdf")

	for name, p := range map[string]*fakePrompter{
		"open": {inErr: converter.ErrCanceled},
		"save": {in: src, out: dest, outErr: converter.ErrCanceled},
	} {
		t.Run(name, func(t *testing.T) {
			var n fakeNotifier
			require.NoError(t, newApp(p, &n, converter.Options{}).Run(context.Background()))
			assert.Empty(t, n.got)
			_, err := os.Stat(dest)
			assert.True(t, errors.Is(err, os.ErrNotExist), "%v", err)
		})
	}
}

func TestAppFailures(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not an image at all"), 0644))
	src := writeTestPNG(t, dir, 10, 20)

	for name, tc := range map[string]struct {
		In, Out   string
		Kind      error
		Message   string
		SaveAsked bool
	}{
		"undecodable": {In: garbage, Out: filepath.Join(dir, "a.pdf"), Kind: converter.ErrImageDecode, Message: "Could not open image."},
		"missing":     {In: filepath.Join(dir, "missing.png"), Out: filepath.Join(dir, "b.pdf"), Kind: converter.ErrImageDecode, Message: "Could not open image."},
		"unwritable":  {In: src, Out: filepath.Join(dir, "nonexistent", "c.pdf"), Kind: converter.ErrDocumentWrite, Message: "Failed to save PDF.", SaveAsked: true},
	} {
		t.Run(name, func(t *testing.T) {
			var n fakeNotifier
			p := fakePrompter{in: tc.In, out: tc.Out}
			err := newApp(&p, &n, converter.Options{}).Run(context.Background())
			assert.ErrorIs(t, err, errConversionFailed)
			assert.ErrorIs(t, err, tc.Kind)
			assert.Equal(t, tc.SaveAsked, p.saveAsked)
			assert.Equal(t, []notification{{"Error", tc.Message, converter.SeverityError}}, n.got)
			_, statErr := os.Stat(tc.Out)
			assert.True(t, errors.Is(statErr, os.ErrNotExist), "%v", statErr)
		})
	}
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	newWriterNotifier(&buf).Notify("Error", "Could not open image.", converter.SeverityError)
	assert.Equal(t, "Error: Could not open image.\n", buf.String())
}
