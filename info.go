// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tgulacsi/stripdf/converter"
)

// printInfo prints the page size, the image size and where the image is drawn,
// for each page of the PDF fn.
func printInfo(w io.Writer, fn string) error {
	infos, err := converter.InspectFile(fn)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d pages\n", fn, len(infos))
	fmt.Fprintln(tw, "page\twidth\theight\timage\tat\talpha")
	for _, info := range infos {
		fmt.Fprintf(tw, "%d\t%g\t%g\t%dx%d\t%g,%g\t%t\n", info.Number, info.Width, info.Height,
			info.ImageWidth, info.ImageHeight, info.Draw[0], info.Draw[1], info.Alpha)
	}
	return tw.Flush()
}
