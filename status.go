// Copyright 2017, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/kardianos/osext"
	"github.com/tgulacsi/go/version"

	"github.com/tgulacsi/stripdf/converter"
)

type statInfo struct {
	last               time.Time
	mem                *runtime.MemStats
	startedAt, version string
	mtx                sync.Mutex
}

var (
	self        = ""
	stats       = new(statInfo)
	onceOnStart = new(sync.Once)
)

func onStart() {
	var err error
	if self, err = osext.Executable(); err != nil {
		logger.Error(err, "getting the path for self")
	} else if abs, err := filepath.Abs(self); err != nil {
		logger.Error(err, "getting the absolute path", "for", self)
	} else {
		self = abs
	}
	stats.startedAt = time.Now().Format(time.RFC3339)
}

// fill fills the stat iff the current one is stale
func (st *statInfo) fill() (alloc, sys uint64) {
	st.mtx.Lock()
	defer st.mtx.Unlock()

	now := time.Now()
	if st.mem == nil {
		st.mem = new(runtime.MemStats)
		st.version = runtime.Version()
	} else if now.Sub(st.last) <= 5*time.Second {
		return st.mem.Alloc, st.mem.Sys
	}
	st.last = now
	runtime.ReadMemStats(st.mem)
	return st.mem.Alloc, st.mem.Sys
}

func statusHandler(limiter *converter.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.Error(w, "", http.StatusNotFound)
			return
		}
		alloc, sys := stats.fill()
		w.Header().Add("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		// nosemgrep: go.lang.security.audit.xss.no-fprintf-to-responsewriter.no-fprintf-to-responsewriter
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
  <head><title>Stripdf</title></head>
  <body>
    <h1>Stripdf</h1>
    <p>%s</p>
    <p>%s compiled with Go version %s</p>
    <p>%d started at %s<br/>
    Allocated: %.03fMb (Sys: %.03fMb)</p>
    <p>Conversions running: %d<br/>
    Page height: %d, engine: %s</p>
    <p>POST an image to <a href="/convert">/convert</a>; see <a href="/metrics">/metrics</a>.</p>
  </body>
</html>`,
			html.EscapeString(version.Main()),
			html.EscapeString(self), stats.version,
			os.Getpid(), stats.startedAt,
			float64(alloc)/1024/1024, float64(sys)/1024/1024,
			limiter.InUse(),
			*converter.ConfPageHeight, html.EscapeString(*converter.ConfEngine),
		)
	}
}
