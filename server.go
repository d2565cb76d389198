// Copyright 2017, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	_ "net/http/pprof"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-logr/logr"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	kithttp "github.com/go-kit/kit/transport/http"

	"github.com/tgulacsi/stripdf/converter"
)

var errBadRequest = errors.New("bad request")

func newServeCommand(options func() converter.Options) *ffcli.Command {
	fs := newFlagSet("serve")
	concurrency := fs.Int("concurrency", 0, "number of conversions run at once (default from config)")
	return &ffcli.Command{Name: "serve", ShortHelp: "serve HTTP",
		ShortUsage: "stripdf serve [flags] [addr.to.listen.on:port]", FlagSet: fs,
		Exec: func(ctx context.Context, args []string) error {
			var listenAddr string
			if len(args) != 0 {
				listenAddr = args[0]
			}
			listeners := getListeners()
			if listenAddr == "" && len(listeners) == 0 {
				listenAddr = *converter.ConfListenAddr
			}
			n := *concurrency
			if n <= 0 {
				n = *converter.ConfConcurrency
			}
			tp, err := logTraceProvider(logWriter{logger.WithName("trace")})
			if err != nil {
				return err
			}
			defer func() { _ = tp.Shutdown(context.Background()) }()
			h := withTracing(newHandler(options(), converter.NewLimiter(n), *converter.ConfRequestTimeout), tp)
			logger.Info("serve", "listeners", len(listeners), "listenAddr", listenAddr, "concurrency", n)

			grp, grpCtx := errgroup.WithContext(ctx)
			srvs := make([]*http.Server, 0, len(listeners)+1)
			if listenAddr != "" {
				s := newHTTPServer(listenAddr, h)
				srvs = append(srvs, s)
				grp.Go(func() error {
					logger.Info("listening", "address", listenAddr)
					return s.ListenAndServe()
				})
			}
			for _, l := range listeners {
				s := newHTTPServer("", h)
				srvs = append(srvs, s)
				grp.Go(func() error {
					logger.Info("listening", "listener", l.Addr())
					return s.Serve(l)
				})
			}
			<-grpCtx.Done()
			for _, s := range srvs {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				_ = s.Shutdown(ctx)
				cancel()
				_ = s.Close()
			}
			if err := grp.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

// newHTTPServer returns a new, stoppable HTTP server
func newHTTPServer(address string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              address,
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       300 * time.Second,
		WriteTimeout:      1800 * time.Second,
		Handler:           h,
	}
}

// newHandler returns the mux serving /convert, /metrics and the status page.
func newHandler(opts converter.Options, limiter *converter.Limiter, timeout time.Duration) http.Handler {
	onceOnStart.Do(onStart)
	var mux http.ServeMux
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) { metrics.WritePrometheus(w, true) })

	H := func(path string, handleFunc http.HandlerFunc) {
		mName := fmt.Sprintf("stripdf_request_duration_seconds{method=%%q,handler=%q}", strings.Replace(path[1:], "/", "_", -1))
		mGet := metrics.GetOrCreateHistogram(fmt.Sprintf(mName, "GET"))
		mPost := metrics.GetOrCreateHistogram(fmt.Sprintf(mName, "POST"))
		mux.HandleFunc(
			path,
			func(w http.ResponseWriter, r *http.Request) {
				var mDur *metrics.Histogram
				switch r.Method {
				case "GET":
					mDur = mGet
				case "POST":
					mDur = mPost
				default:
					mDur = metrics.GetOrCreateHistogram(fmt.Sprintf(mName, r.Method))
				}
				start := time.Now()
				handleFunc.ServeHTTP(w, r)
				mDur.UpdateDuration(start)
			},
		)
	}
	H("/convert", newConvertServer(opts, limiter, timeout).ServeHTTP)
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	mux.Handle("/", statusHandler(limiter))
	return &mux
}

type ctxKeyCancel struct{}

type ctxKeySlot struct{}

// slot records whether the request holds a place in the limiter.
type slot struct{ held bool }

type convertRequest struct {
	Image    image.Image
	Filename string
}

type convertResponse struct {
	converter.Result
	Filename string
	PDF      []byte
}

func newConvertServer(opts converter.Options, limiter *converter.Limiter, timeout time.Duration) *kithttp.Server {
	return kithttp.NewServer(
		convertEP(opts),
		convertDecode(opts.Limits(), limiter),
		convertEncode,
		kithttp.ServerBefore(prepareContext(timeout)),
		kithttp.ServerBefore(func(ctx context.Context, _ *http.Request) context.Context {
			return context.WithValue(ctx, ctxKeySlot{}, &slot{})
		}),
		kithttp.ServerErrorEncoder(convertErrorEncode),
		kithttp.ServerFinalizer(func(ctx context.Context, code int, r *http.Request) {
			if s, ok := ctx.Value(ctxKeySlot{}).(*slot); ok && s.held {
				limiter.Release()
			}
			if cancel, ok := ctx.Value(ctxKeyCancel{}).(context.CancelFunc); ok {
				cancel()
			}
			getLogger(ctx).V(1).Info("finished", "code", code)
		}),
	)
}

func prepareContext(timeout time.Duration) kithttp.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			ctx = context.WithValue(ctx, ctxKeyCancel{}, cancel)
		}
		ctx = converter.SetRequestID(ctx, r.Header.Get("X-Request-Id"))
		lgr := logger.WithValues(
			"id", converter.GetRequestID(ctx),
			"path", r.URL.Path,
			"method", r.Method,
		)
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			lgr = lgr.WithValues("ip", host)
		}
		lgr.Info("ACCEPT", "uri", r.RequestURI)
		return logr.NewContext(ctx, lgr)
	}
}

func getLogger(ctx context.Context) logr.Logger {
	if ctx != nil {
		if lgr, err := logr.FromContext(ctx); err == nil {
			return lgr
		}
	}
	return logger
}

// convertDecode takes a place in the limiter before decoding the image,
// as decoding allocates the whole raster. The finalizer releases it.
func convertDecode(limits converter.Limits, limiter *converter.Limiter) kithttp.DecodeRequestFunc {
	return func(ctx context.Context, r *http.Request) (interface{}, error) {
		if r.Method != http.MethodPost {
			return nil, fmt.Errorf("%w: method %s not allowed", errBadRequest, r.Method)
		}
		if err := limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		if s, ok := ctx.Value(ctxKeySlot{}).(*slot); ok {
			s.held = true
		} else {
			defer limiter.Release()
		}
		f, err := getOneRequestFile(ctx, r)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, contentType, err := converter.DecodeImage(f, limits)
		if err != nil {
			return nil, err
		}
		getLogger(ctx).V(1).Info("decoded", "filename", f.Filename, "type", contentType, "bounds", img.Bounds())
		return convertRequest{Image: img, Filename: f.Filename}, nil
	}
}

func convertEP(opts converter.Options) func(ctx context.Context, request interface{}) (interface{}, error) {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(convertRequest)
		if !ok {
			return nil, fmt.Errorf("awaited convertRequest, got %T", request)
		}
		var buf bytes.Buffer
		res, err := converter.Convert(ctx, &buf, req.Image, opts)
		if err != nil {
			return nil, err
		}
		name := "stripdf.pdf"
		if req.Filename != "" {
			name = converter.PDFName(baseName(req.Filename))
		}
		return convertResponse{Result: res, Filename: name, PDF: buf.Bytes()}, nil
	}
}

func convertEncode(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp, ok := response.(convertResponse)
	if !ok {
		return fmt.Errorf("awaited convertResponse, got %T", response)
	}
	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Length", strconv.Itoa(len(resp.PDF)))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": resp.Filename}))
	h.Set("X-Page-Count", strconv.Itoa(len(resp.Pages)))
	h.Set("X-Conversion-Id", resp.ID)
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(resp.PDF)
	return err
}

// errorStatus maps the conversion errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, converter.ErrImageDecode):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, converter.ErrImageEmbed), errors.Is(err, converter.ErrDocumentInit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func convertErrorEncode(ctx context.Context, err error, w http.ResponseWriter) {
	code := errorStatus(err)
	getLogger(ctx).Error(err, "convert", "code", code)
	_, msg, _ := converter.Message(err)
	if code == http.StatusBadRequest || code == http.StatusServiceUnavailable {
		msg = err.Error()
	}
	http.Error(w, msg, code)
}

type reqFile struct {
	io.ReadCloser
	multipart.FileHeader
}

// getOneRequestFile reads the first file from the request (if multipart/),
// or returns the body if not
func getOneRequestFile(ctx context.Context, r *http.Request) (reqFile, error) {
	if r == nil || r.Body == nil {
		return reqFile{}, fmt.Errorf("%w: empty request", errBadRequest)
	}
	f := reqFile{ReadCloser: r.Body}
	contentType := r.Header.Get("Content-Type")
	logger := getLogger(ctx)
	logger.V(1).Info("readRequestOneFile", "content-type", contentType)
	if !strings.HasPrefix(contentType, "multipart/") {
		f.FileHeader.Header = textproto.MIMEHeader(r.Header)
		_, params, _ := mime.ParseMediaType(r.Header.Get("Content-Disposition"))
		f.FileHeader.Filename = params["filename"]
		return f, nil
	}
	defer r.Body.Close()
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return f, fmt.Errorf("%w: parsing request as multipart-form: %w", errBadRequest, err)
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		return f, fmt.Errorf("%w: no files", errBadRequest)
	}
	defer r.MultipartForm.RemoveAll()

	for _, fileHeaders := range r.MultipartForm.File {
		for _, fileHeader := range fileHeaders {
			var err error
			if f.ReadCloser, err = fileHeader.Open(); err != nil {
				return f, fmt.Errorf("%w: opening part %q: %w", errBadRequest, fileHeader.Filename, err)
			}
			f.FileHeader = *fileHeader
			return f, nil
		}
	}
	return f, nil
}

func baseName(fileName string) string {
	if i := strings.LastIndexAny(fileName, "/\\"); i >= 0 {
		fileName = fileName[i+1:]
	}
	return fileName
}
