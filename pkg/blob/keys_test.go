package blob

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestKeys_DerivedFromContent(t *testing.T) {
	data := []byte("from,to,value\na,b,1\n")
	want := "trust/" + hex.EncodeToString(crypto.Keccak256(data))
	require.Equal(t, want, TrustKey(data))
}

func TestKeys_HavePrefixByKind(t *testing.T) {
	data := []byte("x")
	require.True(t, strings.HasPrefix(TrustKey(data), "trust/"))
	require.True(t, strings.HasPrefix(SeedKey(data), "seed/"))
	require.True(t, strings.HasPrefix(ScoresKey(data), "scores/"))
	require.True(t, strings.HasPrefix(MetaKey(data), "meta/"))
}

func TestKeys_SameContentSameKey(t *testing.T) {
	a := []byte("identical bytes")
	b := []byte("identical bytes")
	require.Equal(t, TrustKey(a), TrustKey(b))
}

func TestKeys_DifferentContentDifferentKey(t *testing.T) {
	require.NotEqual(t, TrustKey([]byte("a")), TrustKey([]byte("b")))
}
