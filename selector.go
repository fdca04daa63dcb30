// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
)

// selection is the committed outcome of the method trials for one file.
type selection struct {
	method MethodID
	size   int64
	crc    uint32
}

// packFile stores one regular file with the best method of the queue.
// Source and codec failures skip the file; archive write and state
// failures are fatal.
func (e *Engine) packFile(dir walkDir, name string, info os.FileInfo) (bool, error) {
	display := dir.display(name)
	fsPath := filepath.Join(dir.fs, name)

	size, err := checkedDataSize(display, info.Size())
	if err != nil {
		e.report(display, err)
		return false, nil
	}

	src, err := os.Open(fsPath)
	if err != nil {
		e.report(display, withCode(fmt.Errorf("open: %w", err), CodeOpen))
		return false, nil
	}

	mark := e.stack.Push(Finalizer{Fn: func() { _ = src.Close() }})
	meta := EntryMeta{ModTime: info.ModTime(), Attr: attrOf(info)}
	if err := e.arc.NewEntry(e.storeDir(dir), name, meta); err != nil {
		_ = e.stack.Unwind(mark)
		e.report(display, err)
		return false, nil
	}

	best, err := e.selectMethod(src, int64(size), display)
	if err != nil {
		unwindErr := e.stack.Unwind(mark)
		if isArchiveFault(err) {
			return false, err
		}

		if unwindErr != nil {
			return false, unwindErr
		}

		e.report(display, err)
		return false, nil
	}

	if err := e.arc.FinalizeFile(size, best.crc); err != nil {
		_ = e.stack.Unwind(mark)
		return false, err
	}

	_ = e.stack.Reconcile(mark)
	e.printf("Packing %s  %s  %s\n", MethodName(best.method), display, formatRatio(uint64(best.size), uint64(size)))

	if e.inv.Switches.Move {
		e.removeSource(display, fsPath)
	}

	return true, nil
}

// selectMethod trials the queued codecs in order and accepts the smallest
// output. Every trial writes at the same archive offset, so the bytes left
// in the archive belong to the last executed trial; when that trial was
// rejected the accepted method is encoded once more.
func (e *Engine) selectMethod(src io.ReadSeeker, size int64, display string) (selection, error) {
	if size == 0 {
		if err := e.arc.AcceptTrial(MethodCopy, 0); err != nil {
			return selection{}, archiveFault(err)
		}

		return selection{method: MethodCopy}, nil
	}

	bar := newProgress(e.showProgress(), e.out, size, display)
	defer bar.finish()

	best := selection{method: MethodCopy, size: size}
	accepted, last := -1, -1
	for i := 0; i < len(e.queue); i++ {
		id := e.queue[i]
		trial, err := e.trial(src, id, i > 0, size, bar)
		if err != nil {
			return best, err
		}

		last = i
		if trial.size < best.size || id == MethodCopy {
			if err := e.arc.AcceptTrial(id, trial.size); err != nil {
				return best, archiveFault(err)
			}

			best = trial
			accepted = i
		}

		next := i + 1
		if next >= len(e.queue) || (e.queue[next] == MethodCopy && best.size != size) {
			break
		}
	}

	if accepted < 0 {
		return best, fmt.Errorf("%w: no method accepted", ErrNoPendingEntry)
	}

	if accepted != last {
		e.logger.Debug("replaying accepted method", "method", MethodName(best.method), "path", display)
		replay, err := e.trial(src, best.method, true, size, bar)
		if err != nil {
			return best, err
		}

		if replay.size != best.size || replay.crc != best.crc {
			return best, fmt.Errorf("%w: %s replay produced %d bytes, want %d",
				ErrSizeMismatch, MethodName(best.method), replay.size, best.size)
		}

		if err := e.arc.AcceptTrial(best.method, replay.size); err != nil {
			return best, archiveFault(err)
		}
	}

	return best, nil
}

// trial encodes the whole source with one method into the pending entry.
// The codec cleanup runs right after the trial whatever its outcome.
func (e *Engine) trial(src io.ReadSeeker, id MethodID, rewind bool, size int64, bar *progress) (selection, error) {
	method, err := e.methods.Lookup(id)
	if err != nil {
		return selection{}, err
	}

	if rewind {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return selection{}, fmt.Errorf("rewind source: %w", err)
		}
	}

	mark := e.stack.Push(Finalizer{Fn: method.Codec.Cleanup})
	w, err := e.arc.BeginTrial()
	if err != nil {
		_ = e.stack.Unwind(mark)
		return selection{}, archiveFault(err)
	}

	bar.restart("Packing " + method.Name)

	in := &hashingReader{r: src, hash: crc32.NewIEEE(), progress: bar}
	n, encErr := method.Codec.Encode(w, in)
	written, flushErr := e.arc.EndTrial()
	_ = e.stack.Unwind(mark)

	if flushErr != nil {
		return selection{}, archiveFault(flushErr)
	}

	if encErr != nil {
		if errors.Is(encErr, ErrArchiveWrite) {
			return selection{}, archiveFault(encErr)
		}

		return selection{}, encErr
	}

	if in.n != size {
		return selection{}, fmt.Errorf("%w: source changed while packing (%d bytes read, %d expected)", ErrSizeMismatch, in.n, size)
	}

	e.logger.Debug("method trial", "method", method.Name, "size", n, "written", written)
	return selection{method: id, size: n, crc: in.hash.Sum32()}, nil
}

// archiveFaultError marks a selection failure caused by the archive rather
// than the source, which stops the command.
type archiveFaultError struct {
	err error
}

// archiveFault wraps err as an archive fault.
func archiveFault(err error) error {
	return &archiveFaultError{err: err}
}

// isArchiveFault reports whether err stops the command.
func isArchiveFault(err error) bool {
	var fault *archiveFaultError
	return errors.As(err, &fault)
}

// Error returns the wrapped error message.
func (f *archiveFaultError) Error() string {
	return f.err.Error()
}

// Unwrap returns the wrapped error.
func (f *archiveFaultError) Unwrap() error {
	return f.err
}

// hashingReader checksums and counts content while a codec reads it.
type hashingReader struct {
	r        io.Reader
	hash     hash.Hash32
	progress io.Writer
	n        int64
}

// Read reads from the source and feeds the checksum and progress.
func (h *hashingReader) Read(p []byte) (int, error) {
	n, err := h.r.Read(p)
	if n > 0 {
		_, _ = h.hash.Write(p[:n])
		_, _ = h.progress.Write(p[:n])
		h.n += int64(n)
	}

	return n, err
}

// formatRatio renders compressed/original as a percentage with one decimal.
// An empty original reads as 100.0 %.
func formatRatio(compressed uint64, original uint64) string {
	if original == 0 {
		return "100.0 %"
	}

	permille := compressed * 1000 / original
	return fmt.Sprintf("%3d.%d %%", permille/10, permille%10)
}
