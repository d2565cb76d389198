// Copyright 2019, 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type VasileMIMEDetector struct{}
type HTTPMIMEDetector struct{}

type MIMEDetector interface {
	Match([]byte) (string, error)
}

var DefaultMIMEDetector = MIMEDetector(MultiMIMEDetector{Detectors: []MIMEDetector{VasileMIMEDetector{}, HTTPMIMEDetector{}}})

func MIMEMatch(b []byte) (string, error) { return DefaultMIMEDetector.Match(b) }

func (d VasileMIMEDetector) Match(b []byte) (string, error) {
	typ := mimetype.Detect(b)
	if typ == nil || typ.Is("application/octet-stream") {
		return "", nil
	}
	return typ.String(), nil
}

func (d HTTPMIMEDetector) Match(b []byte) (string, error) {
	typ := http.DetectContentType(b)
	if typ == "application/octet-stream" {
		return "", nil
	}
	return typ, nil
}

// MultiMIMEDetector returns the first non-empty match of its Detectors.
type MultiMIMEDetector struct {
	Detectors []MIMEDetector
}

func (d MultiMIMEDetector) Match(b []byte) (string, error) {
	var firstErr error
	for _, detector := range d.Detectors {
		typ, err := detector.Match(b)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if typ != "" {
			return typ, nil
		}
	}
	if firstErr == nil {
		firstErr = errors.New("not found")
	}
	return "", firstErr
}

// ImageContentTypes are the accepted source image types.
var ImageContentTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
}

// IsImageType reports whether contentType is an accepted source image type.
func IsImageType(contentType string) bool {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "image/x-ms-bmp" {
		ct = "image/bmp"
	}
	_, ok := ImageContentTypes[ct]
	return ok
}
