// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

//go:build linux

package harc

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// readNode encodes a fifo or device node.
func readNode(path string, info os.FileInfo) ([]byte, error) {
	mode := info.Mode()
	switch {
	case mode&os.ModeNamedPipe != 0:
		return []byte{specialFifo}, nil
	case mode&os.ModeDevice != 0:
		var st unix.Stat_t
		if err := unix.Lstat(path, &st); err != nil {
			return nil, fmt.Errorf("stat device: %w", err)
		}

		tag := byte(specialBlock)
		if mode&os.ModeCharDevice != 0 {
			tag = specialChar
		}

		payload := make([]byte, 9)
		payload[0] = tag
		binary.LittleEndian.PutUint64(payload[1:], uint64(st.Rdev)) //nolint:gosec // rdev width differs per platform
		return payload, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrSpecialUnsupported, mode.Type())
	}
}

// makeNode creates a fifo or device node.
func makeNode(path string, payload []byte) error {
	switch payload[0] {
	case specialFifo:
		if err := unix.Mkfifo(path, 0o644); err != nil {
			return fmt.Errorf("create fifo: %w", err)
		}

		return nil
	case specialChar, specialBlock:
		if len(payload) != 9 {
			return ErrInvalidSpecialPayload
		}

		mode := uint32(unix.S_IFBLK | 0o644)
		if payload[0] == specialChar {
			mode = unix.S_IFCHR | 0o644
		}

		dev := binary.LittleEndian.Uint64(payload[1:])
		if err := unix.Mknod(path, mode, int(dev)); err != nil { //nolint:gosec // device numbers fit int
			return fmt.Errorf("create device: %w", err)
		}

		return nil
	default:
		return ErrInvalidSpecialPayload
	}
}

// setLinkTime stamps a symlink itself, not its target.
func setLinkTime(path string, modTime time.Time) error {
	ts := unix.NsecToTimespec(modTime.UnixNano())
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, []unix.Timespec{ts, ts}, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return fmt.Errorf("set link time: %w", err)
	}

	return nil
}
