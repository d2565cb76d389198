// Copyright 2017, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package converter implements the slicing of raster images into
// page-sized strips and their assembly into PDF documents.
package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/UNO-SOFT/filecache"
	"github.com/go-logr/logr"
	config "github.com/stvp/go-toml-config"
)

var logger = logr.Discard()

// SetLogger sets the package-level logger.
func SetLogger(lgr logr.Logger) { logger = lgr }

func getLogger(ctx context.Context) logr.Logger {
	if ctx != nil {
		if lgr, err := logr.FromContext(ctx); err == nil {
			return lgr
		}
	}
	return logger
}

var (
	// ConfPageHeight is the maximal strip height, and the height of every page.
	ConfPageHeight = config.Int("pageHeight", PageHeight)

	// ConfEngine is the PDF engine: "pdfcpu" or "gopdf".
	ConfEngine = config.String("engine", EnginePdfCPU)

	// ConfMaxPixels caps the pixel count of accepted images.
	ConfMaxPixels = config.Int("maxPixels", DefaultMaxPixels)

	// ConfMaxDimension caps the width and the height of accepted images.
	ConfMaxDimension = config.Int("maxDimension", DefaultMaxDimension)

	// ConfWorkdir is the working directory (will be os.TempDir() if empty)
	ConfWorkdir = config.String("workdir", "")

	// ConfUseCache enables the conversion cache under Workdir.
	ConfUseCache = config.Bool("cache", false)

	// ConfValidate makes ConvertFile validate the written PDF with pdfcpu.
	ConfValidate = config.Bool("validate", false)

	// ConfListenAddr is a listen address for HTTP requests
	ConfListenAddr = config.String("listen", ":9500")

	// ConfLogFile specifies the file to log - instead of command line.
	ConfLogFile = config.String("logfile", "")

	// ConfRequestTimeout is the time limit of one HTTP conversion request.
	ConfRequestTimeout = config.Duration("requestTimeout", 5*time.Minute)

	// ConfConcurrency limits the concurrently running conversions of the HTTP service.
	ConfConcurrency = config.Int("concurrency", Concurrency)
)

// Workdir is the main working directory
var Workdir = os.TempDir()

// Cache is the conversion cache, nil if disabled.
var Cache *filecache.Cache

// LoadConfig loads TOML config file
func LoadConfig(ctx context.Context, fn string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fn != "" {
		if err := config.Parse(fn); err != nil {
			logger.Info("WARN Cannot parse config file", "file", fn, "error", err)
		}
	}
	if *ConfPageHeight <= 0 {
		return fmt.Errorf("pageHeight=%d: must be positive", *ConfPageHeight)
	}
	if _, err := NewDocument(*ConfEngine); err != nil {
		return err
	}
	if *ConfWorkdir != "" {
		_ = os.Setenv("TMPDIR", *ConfWorkdir)
		Workdir = *ConfWorkdir
	}
	Cache = nil
	if !*ConfUseCache {
		return nil
	}
	var err error
	cd := filepath.Join(Workdir, "stripdf-filecache")
	_ = os.MkdirAll(cd, 0700)
	if Cache, err = filecache.Open(cd); err != nil {
		var tErr error
		if cd, tErr = os.MkdirTemp(Workdir, "stripdf-filecache-*"); tErr != nil {
			return err
		} else if Cache, tErr = filecache.Open(cd); tErr != nil {
			return err
		}
	}
	logger.V(1).Info("cache", "dir", cd)
	return nil
}

// DefaultOptions returns the Options set by the configuration.
func DefaultOptions() Options {
	return Options{
		PageHeight:   *ConfPageHeight,
		Engine:       *ConfEngine,
		MaxPixels:    *ConfMaxPixels,
		MaxDimension: *ConfMaxDimension,
		Validate:     *ConfValidate,
	}
}
