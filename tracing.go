// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const tracerName = "github.com/tgulacsi/stripdf"

// logWriter writes every span, as one JSON line, into the log.
type logWriter struct{ logr.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.Logger.V(1).Info("span", "span", string(bytes.TrimSpace(p)))
	return len(p), nil
}

// logTraceProvider returns a TracerProvider exporting the finished spans to w.
func logTraceProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)), nil
}

// withTracing starts a span for every request, named after its method and path.
func withTracing(h http.Handler, tp *sdktrace.TracerProvider) http.Handler {
	if tp == nil {
		return h
	}
	otel.SetTracerProvider(tp)
	return otelhttp.NewHandler(h, tracerName,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
