// Package ident generates local record identifiers and ISO-8601 timestamps.
//
// Identifiers combine a pseudo-random component with a monotonic time
// component. They are not cryptographically unique and not globally unique;
// the store enforces per-table uniqueness at write time, and within a single
// process the monotonic component alone rules out collisions.
package ident

import (
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"
)

var lastTick atomic.Int64

// NewID returns a new process-unique identifier.
func NewID() string {
	now := time.Now().UnixNano()
	for {
		prev := lastTick.Load()
		if now <= prev {
			now = prev + 1
		}
		if lastTick.CompareAndSwap(prev, now) {
			break
		}
	}
	r := rand.Uint64() & 0xffffffffff // 40 bits is plenty alongside the tick
	return strconv.FormatUint(r, 36) + "-" + strconv.FormatInt(now, 36)
}

// Timestamp formats t as an ISO-8601 instant in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// DateOnly formats t as YYYY-MM-DD.
func DateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}
