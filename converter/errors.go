// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"errors"
)

var (
	// ErrImageDecode is returned for unreadable, corrupt or unsupported source images.
	ErrImageDecode = errors.New("image decode")
	// ErrImageEmbed is returned when a strip cannot be re-encoded or embedded.
	ErrImageEmbed = errors.New("image embed")
	// ErrDocumentWrite is returned when the document cannot be serialized or saved.
	ErrDocumentWrite = errors.New("document write")
	// ErrDocumentInit is returned when the PDF document cannot be constructed.
	ErrDocumentInit = errors.New("document init")

	// ErrCanceled signals a cancelled file prompt. It is not reported to the user.
	ErrCanceled = errors.New("canceled")
)

// Severity of a notification.
type Severity uint8

const (
	SeverityInfo = Severity(iota)
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "info"
}

// Message returns the title and the short human-readable message
// to show the user for the result of a conversion.
func Message(err error) (title, message string, severity Severity) {
	switch {
	case err == nil:
		return "Success", "PDF saved successfully.", SeverityInfo
	case errors.Is(err, ErrImageDecode):
		message = "Could not open image."
	case errors.Is(err, ErrDocumentInit):
		message = "Failed to create PDF object."
	case errors.Is(err, ErrImageEmbed):
		message = "Failed to create PDF image."
	case errors.Is(err, ErrDocumentWrite):
		message = "Failed to save PDF."
	default:
		message = err.Error()
	}
	return "Error", message, SeverityError
}
