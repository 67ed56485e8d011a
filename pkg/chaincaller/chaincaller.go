// Package chaincaller wraps pkg/coordinator with transaction signing,
// adapted from the teacher's pkg/contractCaller/caller package: a
// thin ContractCaller struct owning the bound contract plus a signer,
// with one method per on-chain operation.
package chaincaller

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/openrankprotocol/openrank-go/pkg/coordinator"
	"github.com/openrankprotocol/openrank-go/pkg/transactionSigner"
	"go.uber.org/zap"
)

// ChainCaller binds the coordinator contract and drives reads/writes
// against it on behalf of the computer and challenger services.
type ChainCaller struct {
	ethClient   *ethclient.Client
	coordinator *coordinator.Coordinator
	signer      transactionSigner.ITransactionSigner
	logger      *zap.Logger
}

// New binds ChainCaller to coordinatorAddress over ethClient. signer
// may be nil for a read-only caller (e.g. the proof server never
// submits transactions).
func New(ethClient *ethclient.Client, coordinatorAddress common.Address, signer transactionSigner.ITransactionSigner, logger *zap.Logger) (*ChainCaller, error) {
	contract, err := coordinator.New(coordinatorAddress, ethClient)
	if err != nil {
		return nil, fmt.Errorf("chaincaller: bind coordinator: %w", err)
	}
	return &ChainCaller{ethClient: ethClient, coordinator: contract, signer: signer, logger: logger}, nil
}

// ChallengeWindow fetches CHALLENGE_WINDOW() once at service startup.
func (c *ChainCaller) ChallengeWindow(ctx context.Context) (*big.Int, error) {
	return c.coordinator.ChallengeWindow(&bind.CallOpts{Context: ctx})
}

// SubmitMetaComputeResult submits (compute_id, meta_commitment,
// results_meta_id) to the coordinator (§4.G step 7).
func (c *ChainCaller) SubmitMetaComputeResult(ctx context.Context, computeID *big.Int, metaCommitment, resultsID [32]byte) (*types.Receipt, error) {
	txOpts, err := c.signer.GetTransactOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("chaincaller: build transaction options: %w", err)
	}

	tx, err := c.coordinator.SubmitMetaComputeResult(txOpts, computeID, metaCommitment, resultsID)
	if err != nil {
		return nil, fmt.Errorf("chaincaller: submit meta compute result: %w", err)
	}

	c.logger.Sugar().Infow("submitting meta compute result",
		"compute_id", computeID.String(),
		"from", c.signer.GetFromAddress().Hex(),
	)
	return c.signer.SignAndSendTransaction(ctx, tx)
}

// SubmitMetaChallenge submits submitMetaChallenge(compute_id,
// sub_job_failed) to the coordinator (§4.H step 8).
func (c *ChainCaller) SubmitMetaChallenge(ctx context.Context, computeID *big.Int, subJobFailed uint32) (*types.Receipt, error) {
	txOpts, err := c.signer.GetTransactOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("chaincaller: build transaction options: %w", err)
	}

	tx, err := c.coordinator.SubmitMetaChallenge(txOpts, computeID, subJobFailed)
	if err != nil {
		return nil, fmt.Errorf("chaincaller: submit meta challenge: %w", err)
	}

	c.logger.Sugar().Infow("submitting meta challenge",
		"compute_id", computeID.String(),
		"sub_job_failed", subJobFailed,
		"from", c.signer.GetFromAddress().Hex(),
	)
	return c.signer.SignAndSendTransaction(ctx, tx)
}

// FilterMetaComputeRequest returns the MetaComputeRequest events in
// [fromBlock, toBlock].
func (c *ChainCaller) FilterMetaComputeRequest(ctx context.Context, fromBlock, toBlock uint64) ([]*coordinator.MetaComputeRequest, error) {
	it, err := c.coordinator.FilterMetaComputeRequest(&bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}, nil)
	if err != nil {
		return nil, fmt.Errorf("chaincaller: filter meta compute request: %w", err)
	}
	defer it.Close()

	var events []*coordinator.MetaComputeRequest
	for it.Next() {
		events = append(events, it.Event)
	}
	return events, it.Error()
}

// FilterMetaComputeResult returns the MetaComputeResult events in
// [fromBlock, toBlock].
func (c *ChainCaller) FilterMetaComputeResult(ctx context.Context, fromBlock, toBlock uint64) ([]*coordinator.MetaComputeResult, error) {
	it, err := c.coordinator.FilterMetaComputeResult(&bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}, nil)
	if err != nil {
		return nil, fmt.Errorf("chaincaller: filter meta compute result: %w", err)
	}
	defer it.Close()

	var events []*coordinator.MetaComputeResult
	for it.Next() {
		events = append(events, it.Event)
	}
	return events, it.Error()
}

// FilterMetaChallenge returns the MetaChallenge events in [fromBlock,
// toBlock].
func (c *ChainCaller) FilterMetaChallenge(ctx context.Context, fromBlock, toBlock uint64) ([]*coordinator.MetaChallenge, error) {
	it, err := c.coordinator.FilterMetaChallenge(&bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}, nil)
	if err != nil {
		return nil, fmt.Errorf("chaincaller: filter meta challenge: %w", err)
	}
	defer it.Close()

	var events []*coordinator.MetaChallenge
	for it.Next() {
		events = append(events, it.Event)
	}
	return events, it.Error()
}

// LatestBlockNumber returns the chain's current block height.
func (c *ChainCaller) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// LatestBlockTimestamp returns the latest block's Unix timestamp, used
// by the challenge-window computation (§4.H step 7).
func (c *ChainCaller) LatestBlockTimestamp(ctx context.Context) (uint64, error) {
	header, err := c.ethClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("chaincaller: latest block header: %w", err)
	}
	return header.Time, nil
}

// BlockTimestamp returns blockNumber's Unix timestamp.
func (c *ChainCaller) BlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error) {
	header, err := c.ethClient.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return 0, fmt.Errorf("chaincaller: block header %d: %w", blockNumber, err)
	}
	return header.Time, nil
}
