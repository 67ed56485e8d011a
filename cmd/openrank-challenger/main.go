// Command openrank-challenger runs the Challenger service (§4.H): it
// tails the coordinator for MetaComputeResult events, independently
// re-verifies each sub-job, and submits submitMetaChallenge when a
// sub-job fails verification or the rebuilt meta commitment disagrees
// with the one on chain (with --gate-on-challenge-window set, only
// while the challenge window is still open).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	blobbadger "github.com/openrankprotocol/openrank-go/pkg/blob/badger"
	blobmemory "github.com/openrankprotocol/openrank-go/pkg/blob/memory"
	blobs3 "github.com/openrankprotocol/openrank-go/pkg/blob/s3"
	"github.com/openrankprotocol/openrank-go/pkg/chaincaller"
	"github.com/openrankprotocol/openrank-go/pkg/chainwatch"
	"github.com/openrankprotocol/openrank-go/pkg/challenger"
	"github.com/openrankprotocol/openrank-go/pkg/config"
	"github.com/openrankprotocol/openrank-go/pkg/logger"
	"github.com/openrankprotocol/openrank-go/pkg/transactionSigner"
)

func main() {
	app := &cli.App{
		Name:    "openrank-challenger",
		Usage:   "re-verifies meta compute results and challenges mismatched commitments",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "rpc-url",
				Usage:    "Ethereum RPC endpoint URL",
				EnvVars:  []string{config.EnvRPCURL},
				Required: true,
			},
			&cli.Uint64Flag{
				Name:     "chain-id",
				Usage:    "Ethereum chain ID",
				EnvVars:  []string{config.EnvChainID},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "coordinator-address",
				Usage:    "coordinator contract address",
				EnvVars:  []string{config.EnvCoordinatorAddress},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "private-key",
				Usage:    "hex-encoded ECDSA private key used to sign challenge transactions",
				EnvVars:  []string{config.EnvPrivateKey},
				Required: true,
			},
			&cli.Uint64Flag{
				Name:    "block-history",
				Usage:   "number of blocks to backfill on startup",
				Value:   1000,
				EnvVars: []string{config.EnvBlockHistory},
			},
			&cli.Uint64Flag{
				Name:    "log-pull-seconds",
				Usage:   "seconds between successive event log polls",
				Value:   12,
				EnvVars: []string{config.EnvLogPullSeconds},
			},
			&cli.BoolFlag{
				Name:    "gate-on-challenge-window",
				Usage:   "skip submitting a challenge once the on-chain challenge window has closed",
				Value:   true,
				EnvVars: []string{config.EnvGateOnChallengeWindow},
			},
			&cli.StringFlag{
				Name:    "blob-backend",
				Usage:   "blob store backend: 'memory' or 'cached' (badger + s3)",
				Value:   "cached",
				EnvVars: []string{config.EnvBlobBackend},
			},
			&cli.StringFlag{
				Name:    "blob-cache-data-path",
				Usage:   "data directory for the local badger blob cache",
				Value:   "./challenger-data/blob-cache",
				EnvVars: []string{config.EnvBlobCacheDataPath},
			},
			&cli.StringFlag{
				Name:    "s3-bucket",
				Usage:   "S3 bucket backing the canonical blob store",
				EnvVars: []string{config.EnvS3Bucket},
			},
			&cli.StringFlag{
				Name:    "s3-region",
				Usage:   "S3 region override",
				EnvVars: []string{config.EnvS3Region},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "enable debug-level logging",
				EnvVars: []string{config.EnvVerbose},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("openrank-challenger: %v", err)
	}
}

func run(c *cli.Context) error {
	cfg := &config.ChallengerConfig{
		Chain: config.ChainConfig{
			RPCURL:             c.String("rpc-url"),
			ChainID:            c.Uint64("chain-id"),
			CoordinatorAddress: c.String("coordinator-address"),
			PrivateKey:         c.String("private-key"),
			BlockHistory:       c.Uint64("block-history"),
			LogPullSeconds:     c.Uint64("log-pull-seconds"),
		},
		Blob: config.BlobConfig{
			Backend:       c.String("blob-backend"),
			CacheDataPath: c.String("blob-cache-data-path"),
			S3Bucket:      c.String("s3-bucket"),
			S3Region:      c.String("s3-region"),
		},
		GateOnChallengeWindow: c.Bool("gate-on-challenge-window"),
		Verbose:               c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.New(&logger.Config{Debug: cfg.Verbose})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ethClient, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to dial RPC endpoint: %w", err)
	}

	signer, err := transactionSigner.NewPrivateKeySigner(cfg.Chain.PrivateKey, ethClient, l)
	if err != nil {
		return fmt.Errorf("failed to create transaction signer: %w", err)
	}

	chain, err := chaincaller.New(ethClient, common.HexToAddress(cfg.Chain.CoordinatorAddress), signer, l)
	if err != nil {
		return fmt.Errorf("failed to bind coordinator: %w", err)
	}

	store, err := buildBlobStore(ctx, &cfg.Blob, l)
	if err != nil {
		return fmt.Errorf("failed to build blob store: %w", err)
	}

	watcher := chainwatch.NewWatcher(l)
	poller, err := chainwatch.NewPoller(cfg.Chain.RPCURL, cfg.Chain.ChainID, watcher, l)
	if err != nil {
		return fmt.Errorf("failed to create chain poller: %w", err)
	}
	go func() {
		if err := poller.Start(ctx); err != nil && ctx.Err() == nil {
			l.Sugar().Errorw("block poller exited", "error", err)
		}
	}()

	svc := challenger.New(chain, store, l, cfg.Chain.BlockHistory, cfg.Chain.LogPullSeconds).
		WithGateOnChallengeWindow(cfg.GateOnChallengeWindow).
		WithBlockSource(watcher)

	l.Sugar().Infow("openrank-challenger starting",
		"chain_id", cfg.Chain.ChainID,
		"coordinator", cfg.Chain.CoordinatorAddress,
		"blob_backend", cfg.Blob.Backend,
		"gate_on_challenge_window", cfg.GateOnChallengeWindow,
	)
	return svc.Run(ctx)
}

func buildBlobStore(ctx context.Context, cfg *config.BlobConfig, l *zap.Logger) (blob.Store, error) {
	switch cfg.Backend {
	case "memory":
		return blobmemory.New(), nil
	case "cached", "":
		local, err := blobbadger.New(cfg.CacheDataPath, l)
		if err != nil {
			return nil, fmt.Errorf("badger cache: %w", err)
		}
		remote, err := blobs3.New(ctx, cfg.S3Bucket, cfg.S3Region, l)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		return blob.NewCachedStore(local, remote), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
