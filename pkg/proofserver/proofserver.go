// Package proofserver implements the Proof service (spec.md §4.I): a
// single HTTP endpoint answering score-inclusion-proof queries against
// locally persisted job metadata, plus a background ingest loop that
// keeps that metadata current by tailing MetaComputeResult events.
// Grounded on the teacher's pkg/node/server.go (ServeMux + http.Server
// lifecycle) and original_source/app/src/proof.rs.
package proofserver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	"github.com/openrankprotocol/openrank-go/pkg/coordinator"
	"github.com/openrankprotocol/openrank-go/pkg/jobstore"
	"github.com/openrankprotocol/openrank-go/pkg/merkle"
)

// ErrUserNotFound is returned when user_id appears in no sub-job's
// scores CSV for the given compute_id.
var ErrUserNotFound = fmt.Errorf("proofserver: user not found in any sub-job")

// ScoreProofResponse is the JSON body returned by GET /score-proof,
// matching spec.md §4.I step 5's field list exactly. Hash and path
// entries are lowercase hex, no 0x prefix, consistent with every other
// hex surface in this repo (pkg/blob's content-addressed keys).
type ScoreProofResponse struct {
	ComputeID      string   `json:"compute_id"`
	UserID         string   `json:"user_id"`
	Score          float32  `json:"score"`
	ScoreIndex     int      `json:"score_index"`
	ScoresTreePath []string `json:"scores_tree_path"`
	ScoresTreeRoot string   `json:"scores_tree_root"`
	MetaIndex      int      `json:"meta_index"`
	MetaTreePath   []string `json:"meta_tree_path"`
	MetaTreeRoot   string   `json:"meta_tree_root"`
}

// Server answers score-proof queries against a jobstore.Store mirror of
// on-chain job results and a blob.Store holding the scores CSVs those
// results reference.
type Server struct {
	store      jobstore.Store
	blob       blob.Store
	logger     *zap.Logger
	httpServer *http.Server
}

// New builds a Server listening on addr.
func New(store jobstore.Store, blobStore blob.Store, logger *zap.Logger, addr string) *Server {
	s := &Server{store: store, blob: blobStore, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/score-proof", s.handleScoreProof)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start runs the HTTP server in the background. It returns
// immediately; call Stop to shut it down.
func (s *Server) Start() {
	go func() {
		s.logger.Sugar().Infow("starting proof server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Sugar().Errorw("proof server error", "error", err)
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the server's http.Handler, for use in tests via
// httptest without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) handleScoreProof(w http.ResponseWriter, r *http.Request) {
	computeIDStr := r.URL.Query().Get("compute_id")
	userID := r.URL.Query().Get("user_id")
	if computeIDStr == "" || userID == "" {
		http.Error(w, "compute_id and user_id are required", http.StatusBadRequest)
		return
	}

	computeID, ok := new(big.Int).SetString(computeIDStr, 10)
	if !ok {
		http.Error(w, "compute_id must be a decimal integer", http.StatusBadRequest)
		return
	}

	resp, err := s.ScoreProof(r.Context(), computeID, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.logger.Sugar().Errorw("score proof failed", "compute_id", computeIDStr, "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Sugar().Errorw("encode score proof response", "error", err)
	}
}

// ScoreProof implements spec.md §4.I steps 1–5: find the sub-job and
// row containing userID, then build both the scores tree and the meta
// tree and return the inclusion path through each.
func (s *Server) ScoreProof(ctx context.Context, computeID *big.Int, userID string) (*ScoreProofResponse, error) {
	results, err := s.store.LoadJobResults(computeID)
	if err != nil {
		return nil, fmt.Errorf("load job results: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrUserNotFound
	}

	var (
		foundJob    = -1
		foundRow    = -1
		foundScore  float32
		scoreLeaves []merkle.Hash
	)
	for j, res := range results {
		scoresData, err := s.blob.Get(ctx, "scores/"+res.ScoresID)
		if err != nil {
			return nil, fmt.Errorf("sub-job %d: fetch scores: %w", j, err)
		}
		entries, err := blob.DecodeScoresCSV(scoresData)
		if err != nil {
			return nil, fmt.Errorf("sub-job %d: decode scores: %w", j, err)
		}

		row := -1
		for k, e := range entries {
			if e.ID == userID {
				row = k
				break
			}
		}
		if row == -1 {
			continue
		}

		leaves := make([]merkle.Hash, len(entries))
		for k, e := range entries {
			leaves[k] = merkle.HashScoreLeaf(e.Value)
		}
		foundJob = j
		foundRow = row
		foundScore = entries[row].Value
		scoreLeaves = leaves
		break
	}
	if foundJob == -1 {
		return nil, ErrUserNotFound
	}

	scoresTree, err := merkle.NewFixedTree(scoreLeaves)
	if err != nil {
		return nil, fmt.Errorf("build scores tree: %w", err)
	}
	scoresRoot, err := scoresTree.Root()
	if err != nil {
		return nil, fmt.Errorf("scores tree root: %w", err)
	}
	scoresPath, err := scoresTree.GeneratePath(foundRow)
	if err != nil {
		return nil, fmt.Errorf("scores tree path: %w", err)
	}

	commitments := make([]merkle.Hash, len(results))
	for i, res := range results {
		h, err := hexToHash(res.Commitment)
		if err != nil {
			return nil, fmt.Errorf("sub-job %d: decode commitment: %w", i, err)
		}
		commitments[i] = h
	}
	metaTree, err := merkle.NewFixedTree(commitments)
	if err != nil {
		return nil, fmt.Errorf("build meta tree: %w", err)
	}
	metaRoot, err := metaTree.Root()
	if err != nil {
		return nil, fmt.Errorf("meta tree root: %w", err)
	}
	metaPath, err := metaTree.GeneratePath(foundJob)
	if err != nil {
		return nil, fmt.Errorf("meta tree path: %w", err)
	}

	return &ScoreProofResponse{
		ComputeID:      computeID.String(),
		UserID:         userID,
		Score:          foundScore,
		ScoreIndex:     foundRow,
		ScoresTreePath: hashesToHex(scoresPath),
		ScoresTreeRoot: hashToHex(scoresRoot),
		MetaIndex:      foundJob,
		MetaTreePath:   hashesToHex(metaPath),
		MetaTreeRoot:   hashToHex(metaRoot),
	}, nil
}

func hexToHash(s string) (merkle.Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return merkle.Hash{}, err
	}
	if len(b) != 32 {
		return merkle.Hash{}, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	var h merkle.Hash
	copy(h[:], b)
	return h, nil
}

func hashToHex(h merkle.Hash) string { return hex.EncodeToString(h[:]) }

func hashesToHex(hs []merkle.Hash) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = hashToHex(h)
	}
	return out
}

// ChainCaller is the slice pkg/chaincaller.ChainCaller the ingest loop
// needs — the same narrow-interface pattern used by pkg/computer and
// pkg/challenger.
type ChainCaller interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterMetaComputeResult(ctx context.Context, fromBlock, toBlock uint64) ([]*coordinator.MetaComputeResult, error)
}

// Ingestor tails MetaComputeResult events and mirrors each result's
// downloaded job-results metadata into the jobstore keyed by
// compute_id, so ScoreProof never needs to touch the chain.
type Ingestor struct {
	chain           ChainCaller
	blob            blob.Store
	store           jobstore.Store
	logger          *zap.Logger
	blockHistory    uint64
	logPullInterval time.Duration
}

// NewIngestor returns an Ingestor. blockHistory bounds the startup
// backfill window; logPullSeconds is the steady-state poll interval.
func NewIngestor(chain ChainCaller, blobStore blob.Store, store jobstore.Store, logger *zap.Logger, blockHistory, logPullSeconds uint64) *Ingestor {
	return &Ingestor{
		chain:           chain,
		blob:            blobStore,
		store:           store,
		logger:          logger,
		blockHistory:    blockHistory,
		logPullInterval: time.Duration(logPullSeconds) * time.Second,
	}
}

// Run backfills block_history blocks of MetaComputeResult events,
// mirrors each into the jobstore, then polls every logPullInterval for
// new events. Run blocks until ctx is done.
func (in *Ingestor) Run(ctx context.Context) error {
	currentBlock, err := in.chain.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("proofserver: latest block number: %w", err)
	}
	var startingBlock uint64
	if currentBlock > in.blockHistory {
		startingBlock = currentBlock - in.blockHistory
	}
	in.logger.Sugar().Infow("pulling historical results", "from_block", startingBlock, "to_block", currentBlock)
	if err := in.pullWindow(ctx, startingBlock, currentBlock); err != nil {
		return err
	}

	in.logger.Sugar().Info("pulling new results")
	ticker := time.NewTicker(in.logPullInterval)
	defer ticker.Stop()

	latestProcessed := currentBlock
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current, err := in.chain.LatestBlockNumber(ctx)
			if err != nil {
				in.logger.Sugar().Errorw("get current block number", "error", err)
				continue
			}
			if err := in.pullWindow(ctx, latestProcessed, current); err != nil {
				in.logger.Sugar().Errorw("pull window failed", "error", err)
				continue
			}
			latestProcessed = current
		}
	}
}

func (in *Ingestor) pullWindow(ctx context.Context, from, to uint64) error {
	results, err := in.chain.FilterMetaComputeResult(ctx, from, to)
	if err != nil {
		return fmt.Errorf("proofserver: filter meta compute result: %w", err)
	}
	for _, r := range results {
		if err := in.mirror(ctx, r); err != nil {
			in.logger.Sugar().Errorw("mirror job results failed", "compute_id", r.ComputeId.String(), "error", err)
		}
	}
	return nil
}

func (in *Ingestor) mirror(ctx context.Context, res *coordinator.MetaComputeResult) error {
	data, err := in.blob.Get(ctx, "meta/"+hex.EncodeToString(res.ResultsId[:]))
	if err != nil {
		return fmt.Errorf("download job results: %w", err)
	}
	jobResults, err := blob.DecodeJobResults(data)
	if err != nil {
		return fmt.Errorf("decode job results: %w", err)
	}
	if err := in.store.SaveJobResults(res.ComputeId, jobResults); err != nil {
		return fmt.Errorf("save job results: %w", err)
	}
	in.logger.Sugar().Infow("mirrored job results", "compute_id", res.ComputeId.String(), "sub_jobs", len(jobResults))
	return nil
}
