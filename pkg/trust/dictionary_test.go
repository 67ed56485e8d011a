package trust

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDictionary_MonotonicAssignment(t *testing.T) {
	d := NewDictionary()

	require.Equal(t, uint64(0), d.IndexFor("alice"))
	require.Equal(t, uint64(1), d.IndexFor("bob"))
	require.Equal(t, uint64(0), d.IndexFor("alice"), "repeat lookup must return the same index")
	require.Equal(t, uint64(2), d.IndexFor("carol"))
	require.Equal(t, 3, d.Count())
}

func TestDictionary_LookupAndIDFor(t *testing.T) {
	d := NewDictionary()
	_, ok := d.Lookup("alice")
	require.False(t, ok)

	idx := d.IndexFor("alice")
	got, ok := d.Lookup("alice")
	require.True(t, ok)
	require.Equal(t, idx, got)

	id, ok := d.IDFor(idx)
	require.True(t, ok)
	require.Equal(t, "alice", id)

	_, ok = d.IDFor(99)
	require.False(t, ok)
}
