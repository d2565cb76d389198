// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tgulacsi/stripdf/converter"
)

// errConversionFailed marks a failure that has already been shown to the user.
var errConversionFailed = errors.New("conversion failed")

// Prompter asks the user for the files to work on.
//
// Both methods return converter.ErrCanceled when the user gives up.
type Prompter interface {
	OpenImage(ctx context.Context) (string, error)
	SavePDF(ctx context.Context, suggested string) (string, error)
}

// Notifier shows the outcome of a conversion.
type Notifier interface {
	Notify(title, message string, severity converter.Severity)
}

// App is the select-image, save-as-PDF flow.
type App struct {
	Prompter Prompter
	Notifier Notifier
	Options  converter.Options
}

func newApp(p Prompter, n Notifier, opts converter.Options) App {
	return App{Prompter: p, Notifier: n, Options: opts}
}

// Run asks for an image, decodes it, asks for the destination and writes the PDF.
//
// A cancelled prompt returns nil without any notification or output.
// A failed conversion is notified and returned wrapped in errConversionFailed.
func (a App) Run(ctx context.Context) error {
	logger := logger.WithName("app")
	src, err := a.Prompter.OpenImage(ctx)
	if err != nil {
		if errors.Is(err, converter.ErrCanceled) {
			logger.V(1).Info("open canceled")
			return nil
		}
		return err
	}

	img, contentType, err := converter.DecodeFile(src, a.Options.Limits())
	if err != nil {
		return a.fail(err)
	}
	logger.V(1).Info("decoded", "file", src, "type", contentType, "bounds", img.Bounds())

	dest, err := a.Prompter.SavePDF(ctx, converter.PDFName(src))
	if err != nil {
		if errors.Is(err, converter.ErrCanceled) {
			logger.V(1).Info("save canceled")
			return nil
		}
		return err
	}

	res, err := converter.ConvertFileImage(ctx, dest, src, img, a.Options)
	if err != nil {
		return a.fail(err)
	}
	logger.Info("saved", "file", dest, "pages", len(res.Pages), "cached", res.Cached)
	a.notify(nil)
	return nil
}

func (a App) fail(err error) error {
	a.notify(err)
	return fmt.Errorf("%w: %w", errConversionFailed, err)
}

func (a App) notify(err error) {
	if a.Notifier == nil {
		return
	}
	title, msg, sev := converter.Message(err)
	a.Notifier.Notify(title, msg, sev)
}
