package blob

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJobDescriptions_RoundTrip(t *testing.T) {
	jobs := []JobDescription{
		{
			Name:    "sub-job-0",
			TrustID: "aa",
			SeedID:  "bb",
			AlgoID:  1,
			Params:  map[string]string{"alpha": "0.5", "delta": "0.01"},
		},
	}

	data, err := EncodeJobDescriptions(jobs)
	require.NoError(t, err)

	decoded, err := DecodeJobDescriptions(data)
	require.NoError(t, err)
	require.Equal(t, jobs, decoded)
}

func TestJobResults_RoundTrip(t *testing.T) {
	results := []JobResult{{ScoresID: "cc", Commitment: "dd"}}

	data, err := EncodeJobResults(results)
	require.NoError(t, err)

	decoded, err := DecodeJobResults(data)
	require.NoError(t, err)
	require.Equal(t, results, decoded)
}

func TestDecodeJobDescriptions_RejectsGarbage(t *testing.T) {
	_, err := DecodeJobDescriptions([]byte("not json"))
	require.Error(t, err)
}
