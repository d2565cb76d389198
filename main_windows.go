//go:build windows

// Copyright 2017 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import "net"

// getListeners returns nil: there is no socket activation on Windows.
func getListeners() []net.Listener { return nil }
