package challenger

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
	"github.com/openrankprotocol/openrank-go/pkg/merkle"
	"github.com/openrankprotocol/openrank-go/pkg/runner"
)

// fakeChain is a ChainCaller test double used the same way
// computer_test.go's is: fixed events plus a recorded submission log.
type fakeChain struct {
	window    *big.Int
	requests  []*coordinator.MetaComputeRequest
	results   []*coordinator.MetaComputeResult
	challenge []*coordinator.MetaChallenge

	latestBlock     uint64
	latestTimestamp uint64
	blockTimestamps map[uint64]uint64

	submitted []submission
}

type submission struct {
	computeID    *big.Int
	subJobFailed uint32
}

func (f *fakeChain) ChallengeWindow(ctx context.Context) (*big.Int, error) { return f.window, nil }
func (f *fakeChain) LatestBlockNumber(ctx context.Context) (uint64, error) { return f.latestBlock, nil }
func (f *fakeChain) LatestBlockTimestamp(ctx context.Context) (uint64, error) {
	return f.latestTimestamp, nil
}
func (f *fakeChain) BlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error) {
	return f.blockTimestamps[blockNumber], nil
}
func (f *fakeChain) FilterMetaComputeRequest(ctx context.Context, from, to uint64) ([]*coordinator.MetaComputeRequest, error) {
	return f.requests, nil
}
func (f *fakeChain) FilterMetaComputeResult(ctx context.Context, from, to uint64) ([]*coordinator.MetaComputeResult, error) {
	return f.results, nil
}
func (f *fakeChain) FilterMetaChallenge(ctx context.Context, from, to uint64) ([]*coordinator.MetaChallenge, error) {
	return f.challenge, nil
}
func (f *fakeChain) SubmitMetaChallenge(ctx context.Context, computeID *big.Int, subJobFailed uint32) (*types.Receipt, error) {
	f.submitted = append(f.submitted, submission{computeID: computeID, subJobFailed: subJobFailed})
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

// seedComputedJob runs a real ComputeRunner over one trust/seed pair,
// uploads the trust/seed/scores blobs, and returns the on-chain
// identifiers (job_description_id, meta_commitment, results_id) a
// genuine MetaComputeRequest/Result pair would reference.
func seedComputedJob(t *testing.T, ctx context.Context, store blob.Store) (jobDescriptionID, metaCommitment, resultsID [32]byte) {
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
	jobDescData, err := blob.EncodeJobDescriptions([]blob.JobDescription{job})
	require.NoError(t, err)
	jobDescKey := blob.MetaKey(jobDescData)
	require.NoError(t, store.Put(ctx, jobDescKey, jobDescData))
	jobDescriptionID = mustHash(blob.ContentHash(jobDescData))

	trustEntries, err := blob.DecodeTrustCSV(trustCSV)
	require.NoError(t, err)
	seedEntries, err := blob.DecodeSeedCSV(seedCSV)
	require.NoError(t, err)

	r := runner.NewComputeRunner()
	r.UpdateTrust(trustEntries)
	r.UpdateSeed(seedEntries)
	algo, params, err := runner.ParamsFromJobDescription(job.AlgoID, job.Params)
	require.NoError(t, err)
	require.NoError(t, r.Compute(algo, params))
	scores, err := r.Scores()
	require.NoError(t, err)
	require.NoError(t, r.BuildComputeTree())
	root, err := r.Root()
	require.NoError(t, err)

	scoresCSV, err := blob.EncodeScoresCSV(scores)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, blob.ScoresKey(scoresCSV), scoresCSV))

	results := []blob.JobResult{{
		ScoresID:   blob.ContentHash(scoresCSV),
		Commitment: hex.EncodeToString(root[:]),
	}}
	resultsData, err := blob.EncodeJobResults(results)
	require.NoError(t, err)
	resultsKey := blob.MetaKey(resultsData)
	require.NoError(t, store.Put(ctx, resultsKey, resultsData))
	resultsID = mustHash(blob.ContentHash(resultsData))

	metaTree, err := merkle.NewFixedTree([]merkle.Hash{root})
	require.NoError(t, err)
	metaRoot, err := metaTree.Root()
	require.NoError(t, err)

	return jobDescriptionID, metaRoot, resultsID
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

func TestHandleResultAcceptsGenuineComputation(t *testing.T) {
	ctx := context.Background()
	store := blobmemory.New()
	jobDescriptionID, metaCommitment, resultsID := seedComputedJob(t, ctx, store)

	computeID := big.NewInt(1)
	chain := &fakeChain{
		window:          big.NewInt(3600),
		latestBlock:     100,
		latestTimestamp: 1000,
		blockTimestamps: map[uint64]uint64{50: 900},
	}
	logger := zap.NewNop()
	svc := New(chain, store, logger, 10, 5)

	req := &coordinator.MetaComputeRequest{ComputeId: computeID, JobDescriptionId: jobDescriptionID}
	res := &coordinator.MetaComputeResult{
		ComputeId:  computeID,
		Commitment: metaCommitment,
		ResultsId:  resultsID,
		Raw:        types.Log{BlockNumber: 50},
	}

	require.NoError(t, svc.handleResult(ctx, req, res, chain.window, "test-correlation-id"))
	require.Empty(t, chain.submitted, "a genuinely correct computation must not be challenged")
}

func TestHandleResultChallengesForgedCommitment(t *testing.T) {
	ctx := context.Background()
	store := blobmemory.New()
	jobDescriptionID, _, resultsID := seedComputedJob(t, ctx, store)

	computeID := big.NewInt(2)
	chain := &fakeChain{
		window:          big.NewInt(3600),
		latestBlock:     100,
		latestTimestamp: 1000,
		blockTimestamps: map[uint64]uint64{50: 900},
	}
	logger := zap.NewNop()
	svc := New(chain, store, logger, 10, 5)

	req := &coordinator.MetaComputeRequest{ComputeId: computeID, JobDescriptionId: jobDescriptionID}
	res := &coordinator.MetaComputeResult{
		ComputeId:  computeID,
		Commitment: [32]byte{0xFF}, // forged — does not match the real meta tree root
		ResultsId:  resultsID,
		Raw:        types.Log{BlockNumber: 50},
	}

	require.NoError(t, svc.handleResult(ctx, req, res, chain.window, "test-correlation-id"))
	require.Len(t, chain.submitted, 1)
	require.Equal(t, computeID, chain.submitted[0].computeID)
}

func TestPullWindowSkipsAlreadyChallenged(t *testing.T) {
	ctx := context.Background()
	store := blobmemory.New()
	jobDescriptionID, metaCommitment, resultsID := seedComputedJob(t, ctx, store)

	computeID := big.NewInt(3)
	chain := &fakeChain{
		window:          big.NewInt(3600),
		latestBlock:     100,
		latestTimestamp: 1000,
		blockTimestamps: map[uint64]uint64{50: 900},
		requests: []*coordinator.MetaComputeRequest{
			{ComputeId: computeID, JobDescriptionId: jobDescriptionID},
		},
		results: []*coordinator.MetaComputeResult{
			{ComputeId: computeID, Commitment: metaCommitment, ResultsId: resultsID, Raw: types.Log{BlockNumber: 50}},
		},
		challenge: []*coordinator.MetaChallenge{
			{ComputeId: computeID, SubJobFailed: 0},
		},
	}
	logger := zap.NewNop()
	svc := New(chain, store, logger, 10, 5)

	requests := make(map[string]*coordinator.MetaComputeRequest)
	challenged := make(map[string]bool)
	require.NoError(t, svc.pullWindow(ctx, 0, 100, requests, challenged, chain.window))
	require.Empty(t, chain.submitted, "an already-challenged compute_id must not be re-verified")
}

func TestPullWindowDefersResultWithoutKnownRequest(t *testing.T) {
	ctx := context.Background()
	store := blobmemory.New()
	_, metaCommitment, resultsID := seedComputedJob(t, ctx, store)

	computeID := big.NewInt(4)
	chain := &fakeChain{
		window:          big.NewInt(3600),
		latestBlock:     100,
		latestTimestamp: 1000,
		blockTimestamps: map[uint64]uint64{50: 900},
		results: []*coordinator.MetaComputeResult{
			{ComputeId: computeID, Commitment: metaCommitment, ResultsId: resultsID, Raw: types.Log{BlockNumber: 50}},
		},
	}
	logger := zap.NewNop()
	svc := New(chain, store, logger, 10, 5)

	requests := make(map[string]*coordinator.MetaComputeRequest)
	challenged := make(map[string]bool)
	require.NoError(t, svc.pullWindow(ctx, 0, 100, requests, challenged, chain.window))
	require.Empty(t, chain.submitted, "a result with no matching request yet must be deferred, not verified")
}
