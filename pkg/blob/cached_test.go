package blob

import (
	"context"
	"testing"

	"github.com/openrankprotocol/openrank-go/pkg/blob/memory"
	"github.com/stretchr/testify/require"
)

func TestCachedStore_GetPopulatesLocalOnRemoteFetch(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := memory.New()
	require.NoError(t, remote.Put(ctx, "trust/x", []byte("data")))

	cs := NewCachedStore(local, remote)

	data, err := cs.Get(ctx, "trust/x")
	require.NoError(t, err)
	require.Equal(t, []byte("data"), data)

	ok, err := local.Head(ctx, "trust/x")
	require.NoError(t, err)
	require.True(t, ok, "a remote fetch must populate the local cache")
}

func TestCachedStore_GetPrefersLocalWithoutTouchingRemote(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := memory.New()
	require.NoError(t, local.Put(ctx, "trust/x", []byte("cached")))
	// Remote intentionally has different bytes under the same key to
	// detect whether Get ever consults it when the local copy exists.
	require.NoError(t, remote.Put(ctx, "trust/x", []byte("remote-value")))

	cs := NewCachedStore(local, remote)
	data, err := cs.Get(ctx, "trust/x")
	require.NoError(t, err)
	require.Equal(t, []byte("cached"), data)
}

func TestCachedStore_PutWritesThroughBoth(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := memory.New()
	cs := NewCachedStore(local, remote)

	require.NoError(t, cs.Put(ctx, "seed/x", []byte("v")))

	localData, err := local.Get(ctx, "seed/x")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), localData)

	remoteData, err := remote.Get(ctx, "seed/x")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), remoteData)
}

func TestCachedStore_HeadFallsBackToRemote(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := memory.New()
	require.NoError(t, remote.Put(ctx, "meta/x", []byte("m")))

	cs := NewCachedStore(local, remote)
	ok, err := cs.Head(ctx, "meta/x")
	require.NoError(t, err)
	require.True(t, ok)
}
