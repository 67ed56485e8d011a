// Package computer implements the Computer service (spec.md §4.G): it
// tails the coordinator for MetaComputeRequest events, drives each
// meta-job through STAGE1_DOWNLOAD / STAGE2_COMPUTE / STAGE3_UPLOAD /
// SUBMIT, and posts the resulting meta commitment back on-chain.
// Adapted from original_source/app/src/computer.rs's
// handle_meta_compute_request/run, carried over idiom-for-idiom onto
// pkg/chaincaller, pkg/blob, and pkg/runner.
package computer

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	"github.com/openrankprotocol/openrank-go/pkg/coordinator"
	"github.com/openrankprotocol/openrank-go/pkg/merkle"
	"github.com/openrankprotocol/openrank-go/pkg/runner"
)

// ChainCaller is the slice of pkg/chaincaller.ChainCaller the Computer
// service needs; a narrow interface at the package boundary so tests
// can exercise the pipeline against a fake instead of a live chain.
type ChainCaller interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterMetaComputeRequest(ctx context.Context, fromBlock, toBlock uint64) ([]*coordinator.MetaComputeRequest, error)
	FilterMetaComputeResult(ctx context.Context, fromBlock, toBlock uint64) ([]*coordinator.MetaComputeResult, error)
	SubmitMetaComputeResult(ctx context.Context, computeID *big.Int, metaCommitment, resultsID [32]byte) (*types.Receipt, error)
}

// BlockSource supplies the latest observed block height from a
// background watcher, letting the steady-state poll loop avoid an
// extra eth_blockNumber round-trip on every tick.
type BlockSource interface {
	LatestBlock() (uint64, bool)
}

// Service runs the Computer state machine against one coordinator
// contract and one blob store.
type Service struct {
	chain           ChainCaller
	store           blob.Store
	logger          *zap.Logger
	blockHistory    uint64
	logPullInterval time.Duration
	blocks          BlockSource
}

// WithBlockSource makes Run's steady-state loop use blocks.LatestBlock
// instead of calling chain.LatestBlockNumber once a block has been
// observed.
func (s *Service) WithBlockSource(blocks BlockSource) *Service {
	s.blocks = blocks
	return s
}

// New returns a Computer service. blockHistory bounds the startup
// backfill window; logPullSeconds is the steady-state poll interval.
func New(chain ChainCaller, store blob.Store, logger *zap.Logger, blockHistory, logPullSeconds uint64) *Service {
	return &Service{
		chain:           chain,
		store:           store,
		logger:          logger,
		blockHistory:    blockHistory,
		logPullInterval: time.Duration(logPullSeconds) * time.Second,
	}
}

// Run backfills block_history blocks of MetaComputeRequest/Result
// events, handles every unfinished request found there, then polls
// every logPullInterval for new events. latest_processed only advances
// after a full window is processed. Run blocks until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	currentBlock, finished, err := s.runBackfillOnly(ctx, s.chain)
	if err != nil {
		return err
	}

	s.logger.Sugar().Info("pulling new events")
	ticker := time.NewTicker(s.logPullInterval)
	defer ticker.Stop()

	latestProcessed := currentBlock
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current, err := s.latestBlock(ctx)
			if err != nil {
				s.logger.Sugar().Errorw("get current block number", "error", err)
				continue
			}

			results, err := s.chain.FilterMetaComputeResult(ctx, latestProcessed, current)
			if err != nil {
				s.logger.Sugar().Errorw("filter meta compute result", "error", err)
				continue
			}
			for _, r := range results {
				finished[r.ComputeId.String()] = true
			}

			reqs, err := s.chain.FilterMetaComputeRequest(ctx, latestProcessed, current)
			if err != nil {
				s.logger.Sugar().Errorw("filter meta compute request", "error", err)
				continue
			}
			for _, req := range reqs {
				if finished[req.ComputeId.String()] {
					continue
				}
				s.handleRequest(ctx, req)
			}

			latestProcessed = current
		}
	}
}

// latestBlock prefers the background chainwatch.Watcher's observed
// height, falling back to a direct RPC call until the watcher has
// observed its first block (or if none was ever attached).
func (s *Service) latestBlock(ctx context.Context) (uint64, error) {
	if s.blocks != nil {
		if n, ok := s.blocks.LatestBlock(); ok {
			return n, nil
		}
	}
	return s.chain.LatestBlockNumber(ctx)
}

// runBackfillOnly fetches block_history blocks of MetaComputeRequest/
// Result events, builds the finished-compute-id set from results, and
// handles every request not yet finished. It returns the current block
// height and the finished set so Run can seed its steady-state loop;
// it is also the unit under test for backfill de-duplication, since
// Run itself never returns under normal operation.
func (s *Service) runBackfillOnly(ctx context.Context, chain ChainCaller) (uint64, map[string]bool, error) {
	currentBlock, err := chain.LatestBlockNumber(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("computer: latest block number: %w", err)
	}

	var startingBlock uint64
	if currentBlock > s.blockHistory {
		startingBlock = currentBlock - s.blockHistory
	}

	s.logger.Sugar().Infow("pulling historical logs", "from_block", startingBlock, "to_block", currentBlock)

	finished, err := s.finishedSet(ctx, startingBlock, currentBlock)
	if err != nil {
		return 0, nil, err
	}

	requests, err := chain.FilterMetaComputeRequest(ctx, startingBlock, currentBlock)
	if err != nil {
		return 0, nil, fmt.Errorf("computer: filter meta compute request: %w", err)
	}
	for _, req := range requests {
		if finished[req.ComputeId.String()] {
			continue
		}
		s.handleRequest(ctx, req)
	}

	return currentBlock, finished, nil
}

func (s *Service) finishedSet(ctx context.Context, from, to uint64) (map[string]bool, error) {
	results, err := s.chain.FilterMetaComputeResult(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("computer: filter meta compute result: %w", err)
	}
	finished := make(map[string]bool, len(results))
	for _, r := range results {
		finished[r.ComputeId.String()] = true
	}
	return finished, nil
}

// handleRequest runs the full pipeline for one request. Failures are
// logged and isolated — the loop continues to the next request/tick
// rather than aborting the service.
func (s *Service) handleRequest(ctx context.Context, req *coordinator.MetaComputeRequest) {
	logger := s.logger.Sugar().With("compute_id", req.ComputeId.String(), "correlation_id", uuid.New().String())
	logger.Info("MetaComputeRequestEvent received")

	if err := s.process(ctx, req); err != nil {
		logger.Errorw("handle meta compute request failed", "error", err)
	}
}

func (s *Service) process(ctx context.Context, req *coordinator.MetaComputeRequest) error {
	start := time.Now()

	metaKey := "meta/" + hex.EncodeToString(req.JobDescriptionId[:])
	metaData, err := s.store.Get(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("download job description: %w", err)
	}
	jobs, err := blob.DecodeJobDescriptions(metaData)
	if err != nil {
		return fmt.Errorf("decode job description: %w", err)
	}

	s.logger.Sugar().Info("STAGE 1: downloading all data files in parallel")
	trustCSVs := make([][]byte, len(jobs))
	seedCSVs := make([][]byte, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			trustData, err := s.store.Get(gctx, "trust/"+job.TrustID)
			if err != nil {
				return fmt.Errorf("download trust %s: %w", job.TrustID, err)
			}
			seedData, err := s.store.Get(gctx, "seed/"+job.SeedID)
			if err != nil {
				return fmt.Errorf("download seed %s: %w", job.SeedID, err)
			}
			trustCSVs[i] = trustData
			seedCSVs[i] = seedData
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("stage1: %w", err)
	}

	s.logger.Sugar().Info("STAGE 2: computing scores sequentially")
	results := make([]blob.JobResult, len(jobs))
	scoresCSVs := make([][]byte, len(jobs))
	commitments := make([]merkle.Hash, len(jobs))
	for i, job := range jobs {
		trustEntries, err := blob.DecodeTrustCSV(trustCSVs[i])
		if err != nil {
			return fmt.Errorf("sub-job %d: decode trust csv: %w", i, err)
		}
		seedEntries, err := blob.DecodeSeedCSV(seedCSVs[i])
		if err != nil {
			return fmt.Errorf("sub-job %d: decode seed csv: %w", i, err)
		}

		algo, params, err := runner.ParamsFromJobDescription(job.AlgoID, job.Params)
		if err != nil {
			return fmt.Errorf("sub-job %d: %w", i, err)
		}

		r := runner.NewComputeRunner()
		r.UpdateTrust(trustEntries)
		r.UpdateSeed(seedEntries)
		if err := r.Compute(algo, params); err != nil {
			return fmt.Errorf("sub-job %d: compute: %w", i, err)
		}
		scores, err := r.Scores()
		if err != nil {
			return fmt.Errorf("sub-job %d: scores: %w", i, err)
		}
		if err := r.BuildComputeTree(); err != nil {
			return fmt.Errorf("sub-job %d: build compute tree: %w", i, err)
		}
		root, err := r.Root()
		if err != nil {
			return fmt.Errorf("sub-job %d: root: %w", i, err)
		}

		scoresCSV, err := blob.EncodeScoresCSV(scores)
		if err != nil {
			return fmt.Errorf("sub-job %d: encode scores csv: %w", i, err)
		}
		scoresID := blob.ContentHash(scoresCSV)

		scoresCSVs[i] = scoresCSV
		commitments[i] = root
		results[i] = blob.JobResult{ScoresID: scoresID, Commitment: hex.EncodeToString(root[:])}

		s.logger.Sugar().Infow("sub-job computed", "index", i, "scores_id", scoresID, "commitment", results[i].Commitment)
	}

	s.logger.Sugar().Info("STAGE 3: uploading scores files in parallel")
	g, gctx = errgroup.WithContext(ctx)
	for i := range jobs {
		i := i
		g.Go(func() error {
			key := blob.ScoresKey(scoresCSVs[i])
			if err := s.store.Put(gctx, key, scoresCSVs[i]); err != nil {
				return fmt.Errorf("upload scores %s: %w", results[i].ScoresID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("stage3: %w", err)
	}

	metaTree, err := merkle.NewFixedTree(commitments)
	if err != nil {
		return fmt.Errorf("build meta tree: %w", err)
	}
	metaCommitment, err := metaTree.Root()
	if err != nil {
		return fmt.Errorf("meta tree root: %w", err)
	}

	resultsData, err := blob.EncodeJobResults(results)
	if err != nil {
		return fmt.Errorf("encode job results: %w", err)
	}
	resultsKey := blob.MetaKey(resultsData)
	if err := s.store.Put(ctx, resultsKey, resultsData); err != nil {
		return fmt.Errorf("upload job results: %w", err)
	}

	resultsIDHex := blob.ContentHash(resultsData)
	decoded, err := hex.DecodeString(resultsIDHex)
	if err != nil {
		return fmt.Errorf("decode results id: %w", err)
	}
	var resultsID [32]byte
	copy(resultsID[:], decoded)

	s.logger.Sugar().Infow("posting commitment on-chain, calling submitMetaComputeResult", "compute_id", req.ComputeId.String())
	if _, err := s.chain.SubmitMetaComputeResult(ctx, req.ComputeId, metaCommitment, resultsID); err != nil {
		return fmt.Errorf("submit meta compute result: %w", err)
	}

	s.logger.Sugar().Infow("total compute time", "compute_id", req.ComputeId.String(), "elapsed", time.Since(start))
	return nil
}
