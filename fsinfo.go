// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"fmt"
	"os"
	"time"
)

// fileKind classifies a filesystem item for traversal.
type fileKind uint8

const (
	kindRegular fileKind = iota
	kindDir
	kindSpecial
)

// classify maps an lstat result to a traversal kind.
func classify(info os.FileInfo) fileKind {
	switch mode := info.Mode(); {
	case mode.IsRegular():
		return kindRegular
	case mode.IsDir():
		return kindDir
	default:
		return kindSpecial
	}
}

// attrOf returns the attribute word stored for info.
func attrOf(info os.FileInfo) uint32 {
	return uint32(info.Mode())
}

// Special file payload tags.
const (
	specialSymlink = 'L'
	specialFifo    = 'F'
	specialChar    = 'C'
	specialBlock   = 'B'
)

// readSpecial encodes the special file at path into its archive payload.
func readSpecial(path string, info os.FileInfo) ([]byte, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return nil, fmt.Errorf("read link: %w", err)
		}

		return append([]byte{specialSymlink}, target...), nil
	}

	return readNode(path, info)
}

// makeSpecial recreates a special file from its archive payload.
func makeSpecial(path string, payload []byte) error {
	if len(payload) == 0 {
		return ErrInvalidSpecialPayload
	}

	if payload[0] == specialSymlink {
		if len(payload) == 1 {
			return ErrInvalidSpecialPayload
		}

		if err := os.Symlink(string(payload[1:]), path); err != nil {
			return fmt.Errorf("create link: %w", err)
		}

		return nil
	}

	return makeNode(path, payload)
}

// setMeta stamps path with modTime and, when mode is non-zero, its permission
// bits. Symlinks keep the permissions of their target.
func setMeta(path string, modTime time.Time, mode os.FileMode, useAttr bool) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return setLinkTime(path, modTime)
	}

	if err := os.Chtimes(path, modTime, modTime); err != nil {
		return fmt.Errorf("set time: %w", err)
	}

	if useAttr && mode != 0 {
		if err := os.Chmod(path, mode.Perm()); err != nil {
			return fmt.Errorf("set attributes: %w", err)
		}
	}

	return nil
}
