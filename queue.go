// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

// MethodQueue is the ordered list of codecs tried for each file.
type MethodQueue []MethodID

// Add appends id unless it is already queued.
func (q *MethodQueue) Add(id MethodID) {
	if q.Contains(id) {
		return
	}

	*q = append(*q, id)
}

// Contains reports whether id is queued.
func (q MethodQueue) Contains(id MethodID) bool {
	for _, queued := range q {
		if queued == id {
			return true
		}
	}

	return false
}

// BuildMethodQueue derives the trial order. Without requested methods the
// defaults are used. Copy is appended when absent so every file has a
// fallback.
func BuildMethodQueue(requested []MethodID, defaults []MethodID) MethodQueue {
	source := requested
	if len(source) == 0 {
		source = defaults
	}

	queue := make(MethodQueue, 0, len(source)+1)
	for _, id := range source {
		if id.IsCodec() {
			queue.Add(id)
		}
	}

	queue.Add(MethodCopy)
	return queue
}
