// Package chainwatch tracks the coordinator chain's block height in
// the background, adapted from the teacher's pkg/blockHandler plus its
// cmd/kmsServer wiring of an EVMChainPoller: an IBlockHandler driven by
// a chain-indexer poller instance owned by the caller. The Computer and
// Challenger services poll Watcher.LatestBlock instead of issuing a
// redundant eth_blockNumber call of their own on every tick.
package chainwatch

import (
	"context"
	"sync"
	"time"

	EVMChainPoller "github.com/Layr-Labs/chain-indexer/pkg/chainPollers/evm"
	chainPoller "github.com/Layr-Labs/chain-indexer/pkg/chainPollers"
	"github.com/Layr-Labs/chain-indexer/pkg/chainPollers/persistence/memory"
	"github.com/Layr-Labs/chain-indexer/pkg/clients/ethereum"
	chainIndexerConfig "github.com/Layr-Labs/chain-indexer/pkg/config"
	"github.com/Layr-Labs/chain-indexer/pkg/contractStore/inMemoryContractStore"
	"github.com/Layr-Labs/chain-indexer/pkg/transactionLogParser"
	"go.uber.org/zap"
)

// defaultPollingInterval is used for every chain id: unlike the
// teacher's KMS config (which varies the interval per L1/L2), the
// coordinator's own LOG_PULL_INTERVAL_SECONDS (§6 process-wide
// constants) already governs how often the computer/challenger
// services re-poll event logs, so the block-height watcher itself
// only needs a steady, conservative cadence.
const defaultPollingInterval = 12 * time.Second

// Watcher tracks the latest block height observed on the coordinator
// chain, independently of the event-log polling the computer and
// challenger services do directly against pkg/chaincaller.
type Watcher struct {
	logger *zap.Logger

	mu     sync.RWMutex
	latest uint64
	have   bool
}

// NewWatcher returns an empty watcher; LatestBlock reports have=false
// until the poller observes its first block.
func NewWatcher(logger *zap.Logger) *Watcher {
	return &Watcher{logger: logger}
}

// LatestBlock returns the highest block number the poller has observed
// so far, and whether any block has been observed yet.
func (w *Watcher) LatestBlock() (uint64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest, w.have
}

// HandleBlock implements chainPoller.IBlockHandler by recording the
// highest block number seen.
func (w *Watcher) HandleBlock(ctx context.Context, block *ethereum.EthereumBlock) error {
	n := block.Number.Value()
	w.logger.Sugar().Debugf("chainwatch: observed block %d", n)

	w.mu.Lock()
	if !w.have || n > w.latest {
		w.latest = n
		w.have = true
	}
	w.mu.Unlock()

	return nil
}

// HandleLog is a no-op: event logs are polled directly through
// pkg/chaincaller, not parsed by the chain-indexer poller.
func (w *Watcher) HandleLog(ctx context.Context, logWithBlock *chainPoller.LogWithBlock) error {
	return nil
}

// HandleReorgBlock is a no-op: the watcher keeps the highest block
// number it has seen, and a reorg does not lower it.
func (w *Watcher) HandleReorgBlock(ctx context.Context, blockNumber uint64) {}

// NewPoller constructs the chain-indexer EVM poller that drives w,
// polling rpcURL for chainID every defaultPollingInterval.
func NewPoller(rpcURL string, chainID uint64, w *Watcher, logger *zap.Logger) (*EVMChainPoller.EVMChainPoller, error) {
	ethClient := ethereum.NewEthereumClient(&ethereum.EthereumClientConfig{
		BaseUrl:   rpcURL,
		BlockType: ethereum.BlockType_Latest,
	}, logger)

	cs := inMemoryContractStore.NewInMemoryContractStore(nil, logger)
	logParser := transactionLogParser.NewTransactionLogParser(cs, logger)
	pollerStore := memory.NewInMemoryChainPollerPersistence()

	return EVMChainPoller.NewEVMChainPoller(
		ethClient,
		logParser,
		&EVMChainPoller.EVMChainPollerConfig{
			ChainId:         chainIndexerConfig.ChainId(chainID),
			PollingInterval: defaultPollingInterval,
		},
		pollerStore, w, logger,
	)
}
