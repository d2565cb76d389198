//go:build !windows

// Copyright 2017 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"net"

	"github.com/coreos/go-systemd/v22/activation"
)

// getListeners returns the systemd-activated sockets.
func getListeners() []net.Listener {
	listeners, err := activation.Listeners()
	if err != nil {
		logger.Error(err, "systemd activation")
		return nil
	}
	ls := listeners[:0]
	for _, l := range listeners {
		if l != nil {
			ls = append(ls, l)
		}
	}
	return ls
}
