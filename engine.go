// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Engine runs one archive command. An engine owns its cleanup stack and
// codec state and is not safe for concurrent use; create one per run.
type Engine struct {
	opts    Options
	out     io.Writer
	logger  *log.Logger
	stack   *CleanupStack
	methods *MethodTable
	prompt  *Prompter
	arc     *Archive
	// lastErr is the most recent per-item failure.
	lastErr  error
	queue    MethodQueue
	inv      Invocation
	errCount int
	include  Inclusion
}

// NewEngine prepares an engine for a validated invocation.
func NewEngine(inv Invocation, opts Options) *Engine {
	opts.applyDefaults()

	e := &Engine{
		inv:     inv,
		opts:    opts,
		out:     opts.Out,
		logger:  opts.Logger,
		methods: NewMethodTable(),
		queue:   BuildMethodQueue(inv.Switches.Methods, opts.DefaultMethods),
		include: InclusionFor(inv.Command),
		prompt:  NewPrompter(opts.In, opts.Out, inv.Switches.AssumeYes || inv.Switches.Quiet),
	}
	e.stack = NewCleanupStack(func(err error) {
		e.report("cleanup", err)
	})

	return e
}

// Queue returns the codec trial order of this engine.
func (e *Engine) Queue() MethodQueue {
	return e.queue
}

// Run executes the command against the archive at archivePath. Fatal errors
// stop the command and are returned after the cleanup stack is unwound.
// Per-item errors are logged and the command continues; they are returned
// as ErrItemsFailed carrying the exit code of the last one.
func (e *Engine) Run(ctx context.Context, archivePath string, patterns []string) error {
	if e.inv.Command == CommandCompact {
		return e.compact(ctx, archivePath)
	}

	runErr := e.run(ctx, archivePath, patterns)
	if runErr != nil {
		e.logger.Debug("unwinding cleanup stack", "pending", e.stack.Len())
	}

	_ = e.stack.Unwind(RootMark)

	if runErr != nil {
		return runErr
	}

	if e.lastErr != nil {
		err := fmt.Errorf("%w: %d error(s), last: %w", ErrItemsFailed, e.errCount, e.lastErr)
		return withCode(err, CodeOf(e.lastErr))
	}

	return nil
}

// run opens the archive and dispatches to the command handler.
func (e *Engine) run(ctx context.Context, archivePath string, patterns []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	arc, err := OpenArchive(archivePath, OpenModeFor(e.inv.Command), e.stack)
	if err != nil {
		return err
	}

	e.arc = arc
	e.stack.Push(Finalizer{Fn: func() {
		if err := arc.Close(); err != nil {
			e.report(archivePath, err)
		}
	}})
	e.stack.Push(Finalizer{Fn: e.methods.Cleanup})

	if dropped := arc.Dropped(); dropped > 0 {
		e.logger.Warn("damaged archive tail discarded", "path", archivePath, "bytes", dropped)
	}

	switch e.inv.Command {
	case CommandAdd, CommandFreshen, CommandUpdate:
		return e.add(ctx, patterns)
	case CommandExtract, CommandPExtract:
		return e.extract(ctx, patterns)
	case CommandTest:
		return e.test(ctx, patterns)
	case CommandList:
		return e.list(patterns)
	case CommandDelete:
		return e.delete(ctx, patterns)
	default:
		return fmt.Errorf("%w: %c", ErrUnknownCommand, e.inv.Command)
	}
}

// report records a per-item failure and logs it.
func (e *Engine) report(path string, err error) {
	e.errCount++
	e.lastErr = err
	e.logger.Error("operation failed", "path", path, "err", err)
}

// printf writes user progress lines unless quiet.
func (e *Engine) printf(format string, args ...any) {
	if e.inv.Switches.Quiet {
		return
	}

	_, _ = fmt.Fprintf(e.out, format, args...)
}

// showProgress reports whether progress bars are drawn.
func (e *Engine) showProgress() bool {
	return e.opts.Progress && !e.inv.Switches.Quiet
}

// firstEntry rewinds the archive and returns the first live entry matched by
// sel. No match is a fatal ErrNoEntries.
func (e *Engine) firstEntry(sel *Selector) (*Entry, error) {
	e.arc.Reset()
	entry := e.arc.Next(sel)
	if entry == nil {
		return nil, ErrNoEntries
	}

	return entry, nil
}
