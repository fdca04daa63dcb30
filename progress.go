// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressMinSize is the smallest content that gets a progress bar.
const progressMinSize = 256 * 1024

// progress shows byte progress of one pack, unpack or test pass.
type progress struct {
	bar *progressbar.ProgressBar
}

// newProgress creates a byte progress bar on out, or a no-op when disabled
// or when the content is too small to be worth drawing.
func newProgress(enabled bool, out io.Writer, total int64, description string) *progress {
	if !enabled || total < progressMinSize {
		return &progress{}
	}

	return &progress{
		bar: progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionThrottle(100*time.Millisecond),
		),
	}
}

// Write advances the bar by len(p).
func (p *progress) Write(b []byte) (int, error) {
	if p.bar != nil {
		_ = p.bar.Add(len(b))
	}

	return len(b), nil
}

// restart rewinds the bar for another pass over the same content.
func (p *progress) restart(description string) {
	if p.bar == nil {
		return
	}

	p.bar.Reset()
	p.bar.Describe(description)
}

// finish clears the bar.
func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		_ = p.bar.Clear()
	}
}
