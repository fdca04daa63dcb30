// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import "time"

// Inclusion decides whether a traversal candidate takes part in a command.
// The strategy is picked once per run from the command letter.
type Inclusion uint8

const (
	// IncludeAll accepts every candidate (add).
	IncludeAll Inclusion = iota
	// IncludeFreshen accepts candidates whose archived copy exists and is older (freshen).
	IncludeFreshen
	// IncludeUpdate accepts candidates with no archived copy or an older one (update).
	IncludeUpdate
)

// EntryLookup finds the live entry stored under an exact path and name.
type EntryLookup interface {
	Lookup(dir string, name string) (*Entry, bool)
}

// InclusionFor returns the strategy used by cmd.
func InclusionFor(cmd Command) Inclusion {
	switch cmd {
	case CommandFreshen:
		return IncludeFreshen
	case CommandUpdate:
		return IncludeUpdate
	default:
		return IncludeAll
	}
}

// Include reports whether the candidate stored as dir/name with
// modification time modTime participates. Times compare at the archive's
// one second resolution.
func (inc Inclusion) Include(arc EntryLookup, dir string, name string, modTime time.Time) bool {
	if inc == IncludeAll {
		return true
	}

	entry, found := arc.Lookup(dir, name)
	newer := found && entry.TimeStamp < timeToUint32(modTime)
	if inc == IncludeFreshen {
		return newer
	}

	return !found || newer
}

// String returns the strategy name.
func (inc Inclusion) String() string {
	switch inc {
	case IncludeAll:
		return "all"
	case IncludeFreshen:
		return "freshen"
	case IncludeUpdate:
		return "update"
	default:
		return "unknown"
	}
}
