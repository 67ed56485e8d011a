package redis

import (
	"math/big"
	"os"
	"testing"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	"github.com/openrankprotocol/openrank-go/pkg/logger"
	"github.com/stretchr/testify/require"
)

// getTestRedisAddress returns the Redis address used for testing. Uses
// REDIS_TEST_ADDRESS if set, otherwise defaults to localhost:6379.
func getTestRedisAddress() string {
	if addr := os.Getenv("REDIS_TEST_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// requireStore skips the test if Redis is not reachable.
func requireStore(t *testing.T) *Store {
	t.Helper()

	testLogger, err := logger.New(&logger.Config{Debug: false})
	require.NoError(t, err)

	s, err := New(&Config{Address: getTestRedisAddress(), DB: 15}, testLogger)
	if err != nil {
		t.Skipf("redis not available at %s: %v", getTestRedisAddress(), err)
	}
	return s
}

func TestSaveAndLoadJobResults(t *testing.T) {
	s := requireStore(t)
	defer s.Close()

	computeID := big.NewInt(123)
	results := []blob.JobResult{{ScoresID: "aaaa", Commitment: "bbbb"}}
	require.NoError(t, s.SaveJobResults(computeID, results))

	loaded, err := s.LoadJobResults(computeID)
	require.NoError(t, err)
	require.Equal(t, results, loaded)
}

func TestLoadJobResultsMissing(t *testing.T) {
	s := requireStore(t)
	defer s.Close()

	loaded, err := s.LoadJobResults(big.NewInt(999999))
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestHealthCheck(t *testing.T) {
	s := requireStore(t)
	defer s.Close()
	require.NoError(t, s.HealthCheck())
}
