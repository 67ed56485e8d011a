package computer

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	blobmemory "github.com/openrankprotocol/openrank-go/pkg/blob/memory"
	"github.com/openrankprotocol/openrank-go/pkg/coordinator"
)

// fakeChain is a ChainCaller test double: requests/results are fixed at
// construction, and every SubmitMetaComputeResult call is recorded.
type fakeChain struct {
	requests []*coordinator.MetaComputeRequest
	results  []*coordinator.MetaComputeResult

	submitted []submission
}

type submission struct {
	computeID      *big.Int
	metaCommitment [32]byte
	resultsID      [32]byte
}

func (f *fakeChain) LatestBlockNumber(ctx context.Context) (uint64, error) { return 100, nil }

func (f *fakeChain) FilterMetaComputeRequest(ctx context.Context, from, to uint64) ([]*coordinator.MetaComputeRequest, error) {
	return f.requests, nil
}

func (f *fakeChain) FilterMetaComputeResult(ctx context.Context, from, to uint64) ([]*coordinator.MetaComputeResult, error) {
	return f.results, nil
}

func (f *fakeChain) SubmitMetaComputeResult(ctx context.Context, computeID *big.Int, metaCommitment, resultsID [32]byte) (*types.Receipt, error) {
	f.submitted = append(f.submitted, submission{computeID: computeID, metaCommitment: metaCommitment, resultsID: resultsID})
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func mustHash(h string) [32]byte {
	var out [32]byte
	b, err := hex.DecodeString(h)
	if err != nil {
		panic(err)
	}
	copy(out[:], b)
	return out
}

// seedJobDescription populates the blob store with a single-sub-job
// meta-request: a trust CSV, a seed CSV, and a job-description list
// keyed by its own content hash, returning the key to reference as
// JobDescriptionId.
func seedJobDescription(t *testing.T, ctx context.Context, store blob.Store) [32]byte {
	t.Helper()

	trustCSV := []byte("from,to,value\nalice,bob,1\n")
	seedCSV := []byte("id,value\nalice,1\n")
	require.NoError(t, store.Put(ctx, blob.TrustKey(trustCSV), trustCSV))
	require.NoError(t, store.Put(ctx, blob.SeedKey(seedCSV), seedCSV))

	job := blob.JobDescription{
		Name:    "sub-0",
		TrustID: blob.ContentHash(trustCSV),
		SeedID:  blob.ContentHash(seedCSV),
		AlgoID:  0,
		Params:  nil,
	}
	data, err := blob.EncodeJobDescriptions([]blob.JobDescription{job})
	require.NoError(t, err)

	key := blob.MetaKey(data)
	require.NoError(t, store.Put(ctx, key, data))

	return mustHash(blob.ContentHash(data))
}

func TestProcessComputesAndSubmits(t *testing.T) {
	ctx := context.Background()
	store := blobmemory.New()
	jobDescriptionID := seedJobDescription(t, ctx, store)

	chain := &fakeChain{}
	logger := zap.NewNop()
	svc := New(chain, store, logger, 10, 5)

	req := &coordinator.MetaComputeRequest{
		ComputeId:        big.NewInt(1),
		JobDescriptionId: jobDescriptionID,
	}

	require.NoError(t, svc.process(ctx, req))
	require.Len(t, chain.submitted, 1)
	require.Equal(t, big.NewInt(1), chain.submitted[0].computeID)
}

func TestRunSkipsFinishedRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := blobmemory.New()
	jobDescriptionID := seedJobDescription(t, ctx, store)

	computeID := big.NewInt(7)
	chain := &fakeChain{
		requests: []*coordinator.MetaComputeRequest{
			{ComputeId: computeID, JobDescriptionId: jobDescriptionID},
		},
		results: []*coordinator.MetaComputeResult{
			{ComputeId: computeID, Commitment: [32]byte{}, ResultsId: [32]byte{}},
		},
	}
	logger := zap.NewNop()
	svc := New(chain, store, logger, 10, 5)
	cancel() // fakeChain ignores ctx, so cancelling up front does not affect runBackfillOnly; Run's steady-state loop is not exercised here.

	_, _, err := svc.runBackfillOnly(ctx, chain)
	require.NoError(t, err)
	require.Empty(t, chain.submitted, "a compute_id already present in a MetaComputeResult must not be recomputed")
}
