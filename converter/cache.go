// Copyright 2019, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/UNO-SOFT/filecache"
)

var (
	lastTrimMu sync.Mutex
	lastTrim   time.Time
)

var errNoCache = errors.New("no cache")

// cacheKey hashes the source file together with what shapes the output.
func cacheKey(srcfn string, opts Options) (filecache.ActionID, error) {
	var key filecache.ActionID
	ifh, err := os.Open(srcfn)
	if err != nil {
		return key, err
	}
	defer ifh.Close()
	hsh := filecache.NewHash()
	hsh.Write([]byte("stripdf:" + opts.Engine + ":" + strconv.Itoa(opts.PageHeight) + ":"))
	if _, err = io.Copy(hsh, ifh); err != nil {
		return key, err
	}
	return filecache.ActionID(hsh.SumID()), nil
}

// fromCache copies the cached PDF of srcfn to destfn.
func fromCache(ctx context.Context, destfn, srcfn string, opts Options) (Result, error) {
	if Cache == nil {
		return Result{}, errNoCache
	}
	logger := getLogger(ctx).WithValues("f", "fromCache", "src", srcfn, "dest", destfn)
	key, err := cacheKey(srcfn, opts)
	if err != nil {
		return Result{}, err
	}
	fn, _, err := Cache.GetFile(key)
	if err != nil {
		return Result{}, err
	}
	cfg, err := DecodeFileConfig(srcfn)
	if err != nil {
		return Result{}, err
	}
	strips, err := Layout(cfg.Width, cfg.Height, opts.PageHeight)
	if err != nil {
		return Result{}, err
	}
	if err = cloneFile(fn, destfn); err != nil {
		logger.Info("copy from cache", "source", fn, "error", err)
		return Result{}, err
	}
	logger.Info("served from cache", "key", hex.EncodeToString(key[:]))
	res := newResult(ctx, cfg.Width, cfg.Height, strips, opts.PageHeight)
	res.Cached = true
	return res, nil
}

// toCache stores the converted destfn under the key of srcfn.
func toCache(ctx context.Context, destfn, srcfn string, opts Options) {
	if Cache == nil {
		return
	}
	logger := getLogger(ctx).WithValues("f", "toCache", "src", srcfn, "dest", destfn)
	key, err := cacheKey(srcfn, opts)
	if err != nil {
		logger.Error(err, "cache key")
		return
	}
	ofh, err := os.Open(destfn)
	if err != nil {
		logger.Error(err, "open")
		return
	}
	defer ofh.Close()

	lastTrimMu.Lock()
	now := time.Now()
	if lastTrim.IsZero() || lastTrim.Add(time.Hour).Before(now) {
		lastTrim = now
		Cache.Trim()
	}
	lastTrimMu.Unlock()

	if _, _, err = Cache.Put(key, ofh); err != nil {
		logger.Error(err, "store into cache")
		return
	}
	logger.V(1).Info("store into cache", "key", hex.EncodeToString(key[:]))
}
