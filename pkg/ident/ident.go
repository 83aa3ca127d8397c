// Package ident generates unique, lexicographically sortable identifiers
// for log entries: a zero-padded base-36 millisecond timestamp, a
// per-process sequence counter, and a random suffix.
package ident

import (
	"crypto/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultWidth is the random-suffix length used when callers pass a
// non-positive width.
const DefaultWidth = 6

const (
	alphabet       = "0123456789abcdefghijklmnopqrstuvwxyz"
	timestampWidth = 9
	sequenceWidth  = 4
	sequenceSpace  = 36 * 36 * 36 * 36
)

var sequence atomic.Uint64

// LogID returns a fresh identifier. IDs generated later sort after IDs
// generated earlier; the sequence counter orders IDs minted within the same
// millisecond, and the random suffix separates concurrent processes.
func LogID(width int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	timestamp := pad36(time.Now().UnixMilli(), timestampWidth)
	counter := pad36(int64(sequence.Add(1)%sequenceSpace), sequenceWidth)

	var b strings.Builder
	b.Grow(timestampWidth + sequenceWidth + width + 2)
	b.WriteString(timestamp)
	b.WriteByte('-')
	b.WriteString(counter)
	b.WriteByte('-')
	b.WriteString(randomSuffix(width))

	return b.String()
}

func pad36(value int64, width int) string {
	encoded := strconv.FormatInt(value, 36)
	if len(encoded) >= width {
		return encoded[len(encoded)-width:]
	}
	return strings.Repeat("0", width-len(encoded)) + encoded
}

func randomSuffix(width int) string {
	raw := make([]byte, width)
	// crypto/rand.Read never fails on supported platforms; it panics
	// internally on broken entropy sources.
	_, _ = rand.Read(raw)

	out := make([]byte, width)
	for i, b := range raw {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}
