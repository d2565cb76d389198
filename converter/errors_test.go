// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	for _, tc := range []struct {
		Err      error
		Title    string
		Message  string
		Severity Severity
	}{
		{nil, "Success", "PDF saved successfully.", SeverityInfo},
		{fmt.Errorf("%w: %w", ErrImageDecode, fs.ErrNotExist), "Error", "Could not open image.", SeverityError},
		{fmt.Errorf("page 2: %w", fmt.Errorf("%w: boom", ErrImageEmbed)), "Error", "Failed to create PDF image.", SeverityError},
		{fmt.Errorf("%w: disk full", ErrDocumentWrite), "Error", "Failed to save PDF.", SeverityError},
		{ErrDocumentInit, "Error", "Failed to create PDF object.", SeverityError},
		{errors.New("other"), "Error", "other", SeverityError},
	} {
		title, msg, sev := Message(tc.Err)
		assert.Equal(t, tc.Title, title, "%v", tc.Err)
		assert.Equal(t, tc.Message, msg, "%v", tc.Err)
		assert.Equal(t, tc.Severity, sev, "%v", tc.Err)
	}
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "info", SeverityInfo.String())
}

func TestWrappedCause(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrImageDecode, fs.ErrPermission)
	assert.ErrorIs(t, err, ErrImageDecode)
	assert.ErrorIs(t, err, fs.ErrPermission)
}
