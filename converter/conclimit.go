// Copyright 2017, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import "context"

// Concurrency is the default number of conversions run in parallel by the service.
var Concurrency = int(4)

// Limiter limits the number of concurrently running conversions.
type Limiter struct {
	tokens chan struct{}
}

// NewLimiter returns a Limiter allowing n concurrent holders (at least 1).
func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{tokens: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or the context is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.tokens <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	select {
	case <-l.tokens:
	default:
	}
}

// InUse returns the number of held slots.
func (l *Limiter) InUse() int { return len(l.tokens) }
