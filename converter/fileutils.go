// Copyright 2013, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KarpelesLab/reflink"
	"github.com/google/renameio/v2"
)

// cloneFile copies from to to, with a reflink where the filesystem supports it.
// to is replaced atomically.
func cloneFile(from, to string) error {
	if from == to {
		return nil
	}
	tmp := filepath.Join(filepath.Dir(to), "."+filepath.Base(to)+".reflink")
	_ = os.Remove(tmp)
	if err := reflink.Auto(from, tmp); err == nil {
		if err = os.Rename(tmp, to); err == nil {
			return nil
		}
	}
	_ = os.Remove(tmp)
	return copyFile(from, to)
}

// copy file
func copyFile(from, to string) error {
	if from == to {
		return nil
	}
	ifh, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("copy cannot open %s for reading: %w", from, err)
	}
	defer func() { _ = ifh.Close() }()
	ofh, err := renameio.NewPendingFile(to, renameio.WithPermissions(0644))
	if err != nil {
		return fmt.Errorf("copy cannot open %s for writing: %w", to, err)
	}
	defer func() { _ = ofh.Cleanup() }()
	if _, err = io.Copy(ofh, ifh); err != nil {
		return fmt.Errorf("error copying from %s to %s: %w", from, to, err)
	}
	return ofh.CloseAtomicallyReplace()
}

// return filename with extension stripped
func nakeFilename(fn string) string {
	if ext := filepath.Ext(fn); ext != "" {
		return fn[:len(fn)-len(ext)]
	}
	return fn
}

// PDFName returns the default PDF file name for the image file.
func PDFName(imgfn string) string { return nakeFilename(imgfn) + ".pdf" }
