package proofserver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	blobmemory "github.com/openrankprotocol/openrank-go/pkg/blob/memory"
	jobstoremem "github.com/openrankprotocol/openrank-go/pkg/jobstore/memory"
	"github.com/openrankprotocol/openrank-go/pkg/merkle"
	"github.com/openrankprotocol/openrank-go/pkg/trust"
)

// seedTwoSubJobs populates two sub-jobs' scores CSVs in the blob store
// and the corresponding job-results list in the jobstore, mirroring
// what pkg/computer's Stage 3 + pkg/proofserver's Ingestor would have
// produced for a real meta-job.
func seedTwoSubJobs(t *testing.T, ctx context.Context, blobStore blob.Store, store *jobstoremem.Store, computeID *big.Int) {
	t.Helper()

	sub0 := []byte("i,v\nalice,0.4\nbob,0.1\n")
	sub1 := []byte("i,v\ncarol,0.9\n")
	require.NoError(t, blobStore.Put(ctx, blob.ScoresKey(sub0), sub0))
	require.NoError(t, blobStore.Put(ctx, blob.ScoresKey(sub1), sub1))

	entries0, err := blob.DecodeScoresCSV(sub0)
	require.NoError(t, err)
	entries1, err := blob.DecodeScoresCSV(sub1)
	require.NoError(t, err)

	commit0 := scoresRoot(t, entries0)
	commit1 := scoresRoot(t, entries1)

	results := []blob.JobResult{
		{ScoresID: blob.ContentHash(sub0), Commitment: hex.EncodeToString(commit0[:])},
		{ScoresID: blob.ContentHash(sub1), Commitment: hex.EncodeToString(commit1[:])},
	}
	require.NoError(t, store.SaveJobResults(computeID, results))
}

func scoresRoot(t *testing.T, entries []trust.ScoreEntry) merkle.Hash {
	t.Helper()
	leaves := make([]merkle.Hash, len(entries))
	for i, e := range entries {
		leaves[i] = merkle.HashScoreLeaf(e.Value)
	}
	tree, err := merkle.NewFixedTree(leaves)
	require.NoError(t, err)
	root, err := tree.Root()
	require.NoError(t, err)
	return root
}

func TestScoreProofFindsUserInSecondSubJob(t *testing.T) {
	ctx := context.Background()
	blobStore := blobmemory.New()
	store := jobstoremem.New()
	computeID := big.NewInt(1)
	seedTwoSubJobs(t, ctx, blobStore, store, computeID)

	srv := New(store, blobStore, zap.NewNop(), ":0")

	resp, err := srv.ScoreProof(ctx, computeID, "carol")
	require.NoError(t, err)
	require.Equal(t, "carol", resp.UserID)
	require.Equal(t, 1, resp.MetaIndex)
	require.Equal(t, 0, resp.ScoreIndex)
	require.InDelta(t, float32(0.9), resp.Score, 1e-6)
	require.NotEmpty(t, resp.MetaTreeRoot)
	require.NotEmpty(t, resp.ScoresTreeRoot)

	leaf := merkle.HashScoreLeaf(resp.Score)
	path := make([]merkle.Hash, len(resp.ScoresTreePath))
	for i, h := range resp.ScoresTreePath {
		path[i] = mustHash(h)
	}
	root := mustHash(resp.ScoresTreeRoot)
	require.True(t, merkle.VerifyPath(leaf, resp.ScoreIndex, path, root))
}

func TestScoreProofUnknownUserReturns404(t *testing.T) {
	ctx := context.Background()
	blobStore := blobmemory.New()
	store := jobstoremem.New()
	computeID := big.NewInt(2)
	seedTwoSubJobs(t, ctx, blobStore, store, computeID)

	srv := New(store, blobStore, zap.NewNop(), ":0")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/score-proof?compute_id=2&user_id=nobody")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScoreProofHTTPRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobStore := blobmemory.New()
	store := jobstoremem.New()
	computeID := big.NewInt(3)
	seedTwoSubJobs(t, ctx, blobStore, store, computeID)

	srv := New(store, blobStore, zap.NewNop(), ":0")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/score-proof?compute_id=3&user_id=alice")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ScoreProofResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "alice", body.UserID)
	require.Equal(t, 0, body.MetaIndex)
	require.Equal(t, 0, body.ScoreIndex)
}

func TestHealthEndpoint(t *testing.T) {
	srv := New(jobstoremem.New(), blobmemory.New(), zap.NewNop(), ":0")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func mustHash(h string) merkle.Hash {
	var out merkle.Hash
	b, err := hex.DecodeString(h)
	if err != nil {
		panic(err)
	}
	copy(out[:], b)
	return out
}
