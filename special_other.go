// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

//go:build !linux

package harc

import (
	"os"
	"time"
)

// readNode reports that device nodes are not supported here.
func readNode(string, os.FileInfo) ([]byte, error) {
	return nil, ErrSpecialUnsupported
}

// makeNode reports that device nodes are not supported here.
func makeNode(string, []byte) error {
	return ErrSpecialUnsupported
}

// setLinkTime is a no-op; link times are not settable here.
func setLinkTime(string, time.Time) error {
	return nil
}
