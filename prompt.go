// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"bufio"
	"fmt"
	"io"
)

// Prompter asks yes/no/all questions on conflicts.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// yes answers every question with yes; an "a" answer sets it.
	yes bool
}

// NewPrompter creates a prompter. assumeYes skips all questions.
func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
		yes: assumeYes,
	}
}

// Confirm prints the question and waits for y, n or a. Other input is
// ignored; end of input answers no.
func (p *Prompter) Confirm(format string, arg string) bool {
	if p.yes {
		return true
	}

	_, _ = fmt.Fprintf(p.out, format, arg)
	for {
		b, err := p.in.ReadByte()
		if err != nil {
			_, _ = fmt.Fprintln(p.out)
			return false
		}

		switch b {
		case 'y', 'Y':
			return true
		case 'n', 'N':
			return false
		case 'a', 'A':
			p.yes = true
			return true
		}
	}
}
