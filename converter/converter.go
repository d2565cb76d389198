// Copyright 2019, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/renameio/v2"
)

// Options of a conversion.
type Options struct {
	// PageHeight is the maximal strip height and the height of every page.
	PageHeight int
	// Engine is EnginePdfCPU (the default) or EngineGoPDF.
	Engine string
	// MaxPixels and MaxDimension limit the decoded source image.
	MaxPixels, MaxDimension int
	// Validate the written PDF file (ConvertFile only).
	Validate bool
}

func (o Options) withDefaults() Options {
	if o.PageHeight == 0 {
		o.PageHeight = PageHeight
	}
	if o.Engine == "" {
		o.Engine = EnginePdfCPU
	}
	return o
}

// Limits returns the image limits of the options.
func (o Options) Limits() Limits {
	return Limits{MaxPixels: o.MaxPixels, MaxDimension: o.MaxDimension}
}

// Page describes one page of the result.
type Page struct {
	Number    int
	Strip     Strip
	Placement Placement
}

// Result of a conversion.
type Result struct {
	ID            string
	Width, Height int
	PageHeight    int
	Pages         []Page
	Cached        bool
}

func newResult(ctx context.Context, width, height int, strips []Strip, pageHeight int) Result {
	res := Result{
		ID:    GetRequestID(ctx),
		Width: width, Height: height,
		PageHeight: pageHeight,
		Pages:      make([]Page, len(strips)),
	}
	for i, s := range strips {
		res.Pages[i] = Page{Number: i + 1, Strip: s, Placement: s.Placement(width, pageHeight)}
	}
	return res
}

var (
	mConvOK       = metrics.NewCounter(`stripdf_conversions_total{result="ok"}`)
	mConvDecode   = metrics.NewCounter(`stripdf_conversions_total{result="decode_error"}`)
	mConvEmbed    = metrics.NewCounter(`stripdf_conversions_total{result="embed_error"}`)
	mConvWrite    = metrics.NewCounter(`stripdf_conversions_total{result="write_error"}`)
	mConvInit     = metrics.NewCounter(`stripdf_conversions_total{result="init_error"}`)
	mConvCached   = metrics.NewCounter(`stripdf_conversions_total{result="cached"}`)
	mConvCanceled = metrics.NewCounter(`stripdf_conversions_total{result="canceled"}`)
	mPages        = metrics.NewCounter(`stripdf_pages_total`)
	mConvDuration = metrics.NewHistogram(`stripdf_conversion_duration_seconds`)
)

func countResult(err error) {
	_, _, sev := Message(err)
	if sev != SeverityError {
		mConvOK.Inc()
		return
	}
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		mConvCanceled.Inc()
	case errors.Is(err, ErrImageDecode):
		mConvDecode.Inc()
	case errors.Is(err, ErrImageEmbed):
		mConvEmbed.Inc()
	case errors.Is(err, ErrDocumentInit):
		mConvInit.Inc()
	default:
		mConvWrite.Inc()
	}
}

// Convert slices img into strips at most opts.PageHeight tall and writes them
// as a PDF to w, one strip per page.
//
// The context is only checked before starting: a started conversion runs to the end.
func Convert(ctx context.Context, w io.Writer, img image.Image, opts Options) (res Result, err error) {
	if err = ctx.Err(); err != nil {
		countResult(err)
		return res, err
	}
	start := time.Now()
	ctx = SetRequestID(ctx, "")
	opts = opts.withDefaults()
	logger := getLogger(ctx).WithValues("id", GetRequestID(ctx), "engine", opts.Engine)
	defer func() {
		countResult(err)
		mConvDuration.UpdateDuration(start)
		if err != nil {
			logger.Error(err, "convert")
		} else {
			logger.Info("converted", "pages", len(res.Pages), "dur", time.Since(start).String())
		}
	}()

	if img == nil {
		return res, fmt.Errorf("%w: no image", ErrImageDecode)
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	strips, err := Layout(width, height, opts.PageHeight)
	if err != nil {
		return res, err
	}
	doc, err := NewDocument(opts.Engine)
	if err != nil {
		return res, err
	}
	res = newResult(ctx, width, height, strips, opts.PageHeight)
	if err = Assemble(ctx, doc, img, res.Pages, opts.PageHeight); err != nil {
		return Result{}, err
	}
	if err = doc.Encode(w); err != nil {
		return Result{}, err
	}
	mPages.Add(len(res.Pages))
	return res, nil
}

// Assemble re-encodes the strip of each page as PNG and appends it to doc.
// It stops at the first failure.
func Assemble(ctx context.Context, doc Document, img image.Image, pages []Page, pageHeight int) error {
	logger := getLogger(ctx)
	width := img.Bounds().Dx()
	for _, p := range pages {
		enc, err := EncodePNG(StripImage(img, p.Strip))
		if err != nil {
			return fmt.Errorf("strip %d: %w", p.Number, err)
		}
		if err = doc.AddPage(width, pageHeight, p.Placement, enc); err != nil {
			return fmt.Errorf("page %d: %w", p.Number, err)
		}
		logger.V(1).Info("page", "number", p.Number, "top", p.Strip.Top, "height", p.Strip.Height, "y", p.Placement.Y)
	}
	return nil
}

// ConvertFile converts the image file srcfn to the PDF file destfn.
//
// destfn is replaced atomically: on any error it is left untouched.
func ConvertFile(ctx context.Context, destfn, srcfn string, opts Options) (Result, error) {
	return ConvertFileImage(ctx, destfn, srcfn, nil, opts)
}

// ConvertFileImage is ConvertFile for a source already decoded into img.
// srcfn is read only for the cache key; with a nil img it is decoded, too.
func ConvertFileImage(ctx context.Context, destfn, srcfn string, img image.Image, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		countResult(err)
		return Result{}, err
	}
	ctx = SetRequestID(ctx, "")
	opts = opts.withDefaults()
	if Cache != nil {
		if res, err := fromCache(ctx, destfn, srcfn, opts); err == nil {
			mConvCached.Inc()
			return res, nil
		}
	}

	if img == nil {
		var err error
		if img, _, err = DecodeFile(srcfn, opts.Limits()); err != nil {
			countResult(err)
			return Result{}, err
		}
	}
	res, err := WriteFile(ctx, destfn, img, opts)
	if err != nil {
		return res, err
	}
	if Cache != nil {
		toCache(ctx, destfn, srcfn, opts)
	}
	return res, nil
}

// validate is replaced in tests.
var validate = Validate

// WriteFile converts the decoded img to the PDF file destfn, replacing it atomically.
// With opts.Validate, an invalid result never reaches destfn.
func WriteFile(ctx context.Context, destfn string, img image.Image, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		countResult(err)
		return Result{}, err
	}
	opts = opts.withDefaults()
	pf, err := renameio.NewPendingFile(destfn, renameio.WithPermissions(0644))
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDocumentWrite, err)
		countResult(err)
		return Result{}, err
	}
	defer func() { _ = pf.Cleanup() }()

	res, err := Convert(ctx, pf, img, opts)
	if err != nil {
		return res, err
	}
	if opts.Validate {
		if err = validate(pf.Name()); err != nil {
			return Result{}, err
		}
	}
	if err = pf.CloseAtomicallyReplace(); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrDocumentWrite, destfn, err)
	}
	return res, nil
}
