// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Switch sets accepted by each command.
const (
	addSwitches     = "sdqemr01234"
	extractSwitches = "aqty"
	testSwitches    = "qe"
	listSwitches    = "f"
	deleteSwitches  = "qe"
	compactSwitches = "q"
)

// validSwitches returns the switch set of cmd.
func validSwitches(cmd Command) (string, bool) {
	switch cmd {
	case CommandAdd, CommandFreshen, CommandUpdate:
		return addSwitches, true
	case CommandExtract, CommandPExtract:
		return extractSwitches, true
	case CommandTest:
		return testSwitches, true
	case CommandList:
		return listSwitches, true
	case CommandDelete:
		return deleteSwitches, true
	case CommandCompact:
		return compactSwitches, true
	default:
		return "", false
	}
}

// ParseInvocation parses a command token such as "a1r" or "xy": the first
// letter selects the command, the rest are switches valid for it. Letters
// are case-insensitive.
func ParseInvocation(token string) (Invocation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Invocation{}, fmt.Errorf("%w: empty command", ErrUnknownCommand)
	}

	first, size := utf8.DecodeRuneInString(token)
	cmd := Command(toLowerASCII(byte(first)))
	if size != 1 {
		return Invocation{}, fmt.Errorf("%w: %q", ErrUnknownCommand, token)
	}

	valid, ok := validSwitches(cmd)
	if !ok {
		return Invocation{}, fmt.Errorf("%w: %q", ErrUnknownCommand, token[:1])
	}

	inv := Invocation{Command: cmd}
	sw := &inv.Switches
	for i := 1; i < len(token); i++ {
		c := toLowerASCII(token[i])
		if strings.IndexByte(valid, c) < 0 {
			return Invocation{}, fmt.Errorf("%w: %q for command %c", ErrInvalidSwitch, token[i], cmd)
		}

		switch c {
		case 'q':
			sw.Quiet = true
		case 'y':
			sw.AssumeYes = true
		case 'f':
			sw.FullList = true
		case 'a':
			sw.UseAttr = true
		case 't':
			sw.Touch = true
		case 'r':
			sw.Recurse = true
		case 's':
			sw.Special = true
		case 'd':
			sw.SaveDirs = true
		case 'e':
			sw.ExcludePaths = true
		case 'm':
			sw.Move = true
		default:
			id := MethodID(c - '0')
			queue := MethodQueue(sw.Methods)
			queue.Add(id)
			sw.Methods = queue
		}
	}

	if cmd == CommandExtract {
		sw.ExcludePaths = true
	}

	if sw.ExcludePaths {
		sw.SaveDirs = false
	}

	return inv, nil
}

// OpenModeFor returns the archive open mode used by cmd.
func OpenModeFor(cmd Command) OpenMode {
	switch cmd {
	case CommandAdd, CommandUpdate:
		return OpenCreate
	case CommandFreshen, CommandDelete, CommandCompact:
		return OpenExisting
	default:
		return OpenReadOnly
	}
}

// toLowerASCII lowercases an ASCII letter.
func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}

	return c
}
