// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/tgulacsi/stripdf/converter"
)

type writerNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func newWriterNotifier(w io.Writer) *writerNotifier { return &writerNotifier{w: w} }

// Notify prints "title: message" and logs it.
func (n *writerNotifier) Notify(title, message string, severity converter.Severity) {
	n.mu.Lock()
	fmt.Fprintf(n.w, "%s: %s\n", title, message)
	n.mu.Unlock()
	logger.V(1).Info("notify", "title", title, "message", message, "severity", severity.String())
}
