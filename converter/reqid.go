// Copyright 2023, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"context"
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

type ctxConversionID struct{}

// SetRequestID stamps the context with the ID of the conversion (or HTTP request)
// it serves, unless it already carries one. An empty reqID means a fresh ULID,
// so IDs sort by the start time of the conversion.
func SetRequestID(ctx context.Context, reqID string) context.Context {
	if v, ok := ctx.Value(ctxConversionID{}).(string); ok && v != "" {
		return ctx
	}
	if reqID == "" {
		reqID = newConversionID()
	}
	return context.WithValue(ctx, ctxConversionID{}, reqID)
}

// GetRequestID returns the conversion ID of the context.
// Without one, every call returns a new ID.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxConversionID{}).(string); ok && v != "" {
		return v
	}
	return newConversionID()
}

func newConversionID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
