// Copyright 2017, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/zerologr"
	"github.com/kardianos/osext"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/rs/zerolog"
	"github.com/tgulacsi/go/globalctx"

	"github.com/tgulacsi/stripdf/converter"
)

var zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
var logger = zerologr.New(&zl)

func main() {
	if err := Main(); err != nil {
		if errors.Is(err, errConversionFailed) {
			os.Exit(1)
		}
		logger.Error(err, "Main")
		os.Exit(2)
	}
}

func newFlagSet(name string) *flag.FlagSet { return flag.NewFlagSet(name, flag.ContinueOnError) }

func Main() error {
	var (
		verbose, force    bool
		configFile        string
		logFile           string
		engine            string
		pageHeight        int
		validate, noCache bool
	)

	fs := newFlagSet("stripdf")
	fs.BoolVar(&verbose, "v", false, "verbose logging")
	fs.BoolVar(&force, "force", false, "overwrite the destination without asking")
	fs.StringVar(&configFile, "config", "", "config file (TOML)")
	fs.StringVar(&logFile, "logfile", "", "logfile")
	fs.StringVar(&engine, "engine", "", "PDF engine (pdfcpu or gopdf)")
	fs.IntVar(&pageHeight, "page-height", 0, "page height in pixels (default 2480)")
	fs.BoolVar(&validate, "validate", false, "validate the written PDF")
	fs.BoolVar(&noCache, "no-cache", false, "do not use the conversion cache")

	options := func() converter.Options {
		opts := converter.DefaultOptions()
		if engine != "" {
			opts.Engine = engine
		}
		if pageHeight != 0 {
			opts.PageHeight = pageHeight
		}
		opts.Validate = opts.Validate || validate
		return opts
	}

	appCmd := &ffcli.Command{
		Name:       "stripdf",
		ShortUsage: "stripdf [flags] [image [out.pdf]]",
		ShortHelp:  "stripdf slices an image into page-high strips and saves them as a PDF",
		LongHelp: `stripdf asks for the image and the destination PDF when they are not given.
An empty answer cancels silently.`,
		FlagSet: fs,
		Options: []ff.Option{ff.WithEnvVarPrefix("STRIPDF")},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) > 2 {
				return flag.ErrHelp
			}
			var p argPrompter
			if len(args) > 0 {
				p.In = args[0]
			}
			if len(args) > 1 {
				p.Out = args[1]
			}
			p.Force = force
			p.Interactive = isTerminal()
			return newApp(&p, newWriterNotifier(os.Stderr), options()).Run(ctx)
		},
	}

	var convertForce bool
	fs = newFlagSet("convert")
	fs.BoolVar(&convertForce, "force", false, "overwrite the destination")
	convertCmd := ffcli.Command{Name: "convert", ShortHelp: "convert the image to PDF, without asking",
		ShortUsage: "stripdf convert [-force] <image> [out.pdf]", FlagSet: fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return flag.ErrHelp
			}
			p := argPrompter{In: args[0], Force: convertForce || force}
			if len(args) > 1 {
				p.Out = args[1]
			} else {
				p.Out = converter.PDFName(args[0])
			}
			return newApp(&p, newWriterNotifier(os.Stderr), options()).Run(ctx)
		},
	}
	appCmd.Subcommands = append(appCmd.Subcommands, &convertCmd)

	infoCmd := ffcli.Command{Name: "info", ShortHelp: "print the pages of a PDF",
		ShortUsage: "stripdf info <file.pdf>...", FlagSet: newFlagSet("info"),
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return flag.ErrHelp
			}
			for _, fn := range args {
				if err := printInfo(os.Stdout, fn); err != nil {
					return err
				}
			}
			return nil
		},
	}
	appCmd.Subcommands = append(appCmd.Subcommands, &infoCmd)

	appCmd.Subcommands = append(appCmd.Subcommands, newServeCommand(options))

	if err := appCmd.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if verbose {
		zl = zl.Level(zerolog.DebugLevel)
	}
	closeLogfile, err := logToFile(logFile)
	if err != nil {
		return err
	}
	converter.SetLogger(logger.WithName("converter"))

	if configFile == "" {
		if self, execErr := osext.Executable(); execErr != nil {
			logger.Info("Cannot determine executable file name", "error", execErr)
		} else {
			ini := filepath.Join(filepath.Dir(self), "stripdf.ini")
			if _, statErr := os.Stat(ini); statErr == nil {
				configFile = ini
			}
		}
	}
	ctx, cancel := globalctx.Wrap(context.Background())
	defer cancel()
	logger.V(1).Info("Loading config", "file", configFile)
	if err = converter.LoadConfig(ctx, configFile); err != nil {
		logger.Error(err, "Parsing config", "file", configFile)
		return err
	}
	if noCache {
		converter.Cache = nil
	}
	if closeLogfile == nil {
		if closeLogfile, err = logToFile(*converter.ConfLogFile); err != nil {
			logger.Error(err, "logToFile")
		}
	}
	if closeLogfile != nil {
		converter.SetLogger(logger.WithName("converter"))
		defer func() {
			logger.V(1).Info("close log file", "error", closeLogfile())
		}()
	}
	logger.V(1).Info("parameters",
		"pageHeight", *converter.ConfPageHeight,
		"engine", *converter.ConfEngine,
		"workdir", converter.Workdir,
		"cache", converter.Cache != nil,
		"listen", *converter.ConfListenAddr,
	)

	err = appCmd.Run(ctx)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, ffcli.DefaultUsageFunc(appCmd))
		return nil
	}
	return err
}

func logToFile(fn string) (func() error, error) {
	if fn == "" {
		return nil, nil
	}
	fh, err := os.OpenFile(fn, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		logger.Error(err, "open log file", "file", fn)
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	zl = zerolog.New(zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr}, fh)).
		With().Timestamp().Logger().Level(zl.GetLevel())
	logger.Info("Logging to", "file", fh.Name())
	return fh.Close, nil
}
