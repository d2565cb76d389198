// Copyright 2026 The Stripdf Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tgulacsi/stripdf/converter"
)

// argPrompter takes the paths from the command line, and asks for the missing ones.
type argPrompter struct {
	In, Out     string
	Force       bool
	Interactive bool

	// ask reads one line answering the prompt; nil means the terminal.
	ask func(prompt string) (string, error)
}

var _ Prompter = (*argPrompter)(nil)

func isTerminal() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

func (p *argPrompter) OpenImage(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.In != "" {
		return p.In, nil
	}
	answer, err := p.question("Image to convert: ")
	if err != nil {
		return "", err
	}
	p.In = answer
	return answer, nil
}

func (p *argPrompter) SavePDF(ctx context.Context, suggested string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dest := p.Out
	if dest == "" {
		answer, err := p.question(fmt.Sprintf("Save PDF as (%s): ", suggested))
		if err != nil {
			return "", err
		}
		if dest = answer; dest == "." {
			dest = suggested
		}
	}
	if _, err := os.Stat(dest); err != nil || p.Force {
		p.Out = dest
		return dest, nil
	}
	answer, err := p.question(fmt.Sprintf("%s exists. Overwrite? [y/N] ", dest))
	if err != nil {
		return "", err
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		return "", converter.ErrCanceled
	}
	p.Out = dest
	return dest, nil
}

// question returns the trimmed answer, or ErrCanceled for an empty one.
func (p *argPrompter) question(prompt string) (string, error) {
	ask := p.ask
	if ask == nil {
		if !p.Interactive {
			return "", converter.ErrCanceled
		}
		ask = askTerminal
	}
	answer, err := ask(prompt)
	if err != nil && err != io.EOF {
		return "", err
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return "", converter.ErrCanceled
	}
	return answer, nil
}

func askTerminal(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", err
	}
	defer func() { _ = term.Restore(fd, oldState) }()
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stderr}, prompt)
	return t.ReadLine()
}
