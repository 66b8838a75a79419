package dedup_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jiahewang/smart-irrigation/pkg/dedup"
)

func TestDuplicateWithinTTL(t *testing.T) {
	d := dedup.New(time.Minute, 100)

	require.True(t, d.ShouldProcess("msg-1"))
	require.False(t, d.ShouldProcess("msg-1"))
	require.True(t, d.ShouldProcess("msg-2"))
	require.Equal(t, 2, d.Len())
}

func TestExpiredEntryProcessesAgain(t *testing.T) {
	d := dedup.New(10*time.Millisecond, 100)

	require.True(t, d.ShouldProcess("msg-1"))
	time.Sleep(20 * time.Millisecond)
	require.True(t, d.ShouldProcess("msg-1"))
}

func TestEmptyIDAlwaysProcessed(t *testing.T) {
	d := dedup.New(time.Minute, 100)

	require.True(t, d.ShouldProcess(""))
	require.True(t, d.ShouldProcess(""))
	require.Zero(t, d.Len())
}

func TestCapacitySweepEvictsExpired(t *testing.T) {
	d := dedup.New(time.Nanosecond, 4)

	for i := 0; i < 20; i++ {
		d.ShouldProcess(string(rune('a' + i)))
	}
	require.LessOrEqual(t, d.Len(), 5)
}
