package ident

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_UniqueInTightLoop(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %q after %d iterations", id, i)
		seen[id] = struct{}{}
	}
}

func TestNewID_Shape(t *testing.T) {
	id := NewID()
	parts := strings.SplitN(id, "-", 2)
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.NotEmpty(t, parts[1])
}

func TestTimestamp_UTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := Timestamp(time.Date(2024, 6, 10, 15, 0, 0, 0, loc))
	assert.Equal(t, "2024-06-10T12:00:00Z", ts)
}

func TestDateOnly(t *testing.T) {
	d := DateOnly(time.Date(2024, 6, 10, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, "2024-06-10", d)
}
