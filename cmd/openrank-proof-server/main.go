// Command openrank-proof-server answers score-inclusion-proof queries
// (§4.I) over HTTP while a background ingestor mirrors MetaComputeResult
// events into the job store, so the read path never touches the chain.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	blobbadger "github.com/openrankprotocol/openrank-go/pkg/blob/badger"
	blobmemory "github.com/openrankprotocol/openrank-go/pkg/blob/memory"
	blobs3 "github.com/openrankprotocol/openrank-go/pkg/blob/s3"
	"github.com/openrankprotocol/openrank-go/pkg/chaincaller"
	"github.com/openrankprotocol/openrank-go/pkg/config"
	"github.com/openrankprotocol/openrank-go/pkg/jobstore"
	jobstorebadger "github.com/openrankprotocol/openrank-go/pkg/jobstore/badger"
	jobstorememory "github.com/openrankprotocol/openrank-go/pkg/jobstore/memory"
	jobstoreredis "github.com/openrankprotocol/openrank-go/pkg/jobstore/redis"
	"github.com/openrankprotocol/openrank-go/pkg/logger"
	"github.com/openrankprotocol/openrank-go/pkg/proofserver"
)

func main() {
	app := &cli.App{
		Name:    "openrank-proof-server",
		Usage:   "serves score-inclusion-proof queries over HTTP",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP server port",
				Value:   8080,
				EnvVars: []string{config.EnvProofServerPort},
			},
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
			&cli.StringFlag{
				Name:    "blob-backend",
				Usage:   "blob store backend: 'memory' or 'cached' (badger + s3)",
				Value:   "cached",
				EnvVars: []string{config.EnvBlobBackend},
			},
			&cli.StringFlag{
				Name:    "blob-cache-data-path",
				Usage:   "data directory for the local badger blob cache",
				Value:   "./proof-server-data/blob-cache",
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
			&cli.StringFlag{
				Name:    "jobstore-backend",
				Usage:   "job store backend: 'memory', 'badger', or 'redis'",
				Value:   "redis",
				EnvVars: []string{config.EnvJobStoreBackend},
			},
			&cli.StringFlag{
				Name:    "jobstore-data-path",
				Usage:   "data directory for the badger job store backend",
				Value:   "./proof-server-data/jobstore",
				EnvVars: []string{config.EnvJobStoreDataPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis server address (host:port) for the redis job store backend",
				Value:   "localhost:6379",
				EnvVars: []string{config.EnvRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password (optional)",
				EnvVars: []string{config.EnvRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				Value:   0,
				EnvVars: []string{config.EnvRedisDB},
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
		log.Fatalf("openrank-proof-server: %v", err)
	}
}

func run(c *cli.Context) error {
	cfg := &config.ProofServerConfig{
		Port: c.Int("port"),
		Chain: config.ChainConfig{
			RPCURL:             c.String("rpc-url"),
			ChainID:            c.Uint64("chain-id"),
			CoordinatorAddress: c.String("coordinator-address"),
			BlockHistory:       c.Uint64("block-history"),
			LogPullSeconds:     c.Uint64("log-pull-seconds"),
		},
		Blob: config.BlobConfig{
			Backend:       c.String("blob-backend"),
			CacheDataPath: c.String("blob-cache-data-path"),
			S3Bucket:      c.String("s3-bucket"),
			S3Region:      c.String("s3-region"),
		},
		JobStore: config.JobStoreConfig{
			Backend:       c.String("jobstore-backend"),
			DataPath:      c.String("jobstore-data-path"),
			RedisAddress:  c.String("redis-address"),
			RedisPassword: c.String("redis-password"),
			RedisDB:       c.Int("redis-db"),
		},
		Verbose: c.Bool("verbose"),
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

	// The proof server never signs or submits transactions, so it binds
	// the coordinator with a nil signer (chaincaller.New permits this
	// for read-only callers).
	chain, err := chaincaller.New(ethClient, common.HexToAddress(cfg.Chain.CoordinatorAddress), nil, l)
	if err != nil {
		return fmt.Errorf("failed to bind coordinator: %w", err)
	}

	blobStore, err := buildBlobStore(ctx, &cfg.Blob, l)
	if err != nil {
		return fmt.Errorf("failed to build blob store: %w", err)
	}

	store, err := buildJobStore(&cfg.JobStore, l)
	if err != nil {
		return fmt.Errorf("failed to build job store: %w", err)
	}
	defer func() { _ = store.Close() }()

	ingestor := proofserver.NewIngestor(chain, blobStore, store, l, cfg.Chain.BlockHistory, cfg.Chain.LogPullSeconds)
	srv := proofserver.New(store, blobStore, l, fmt.Sprintf(":%d", cfg.Port))

	errCh := make(chan error, 1)
	go func() {
		errCh <- ingestor.Run(ctx)
	}()

	l.Sugar().Infow("openrank-proof-server starting",
		"port", cfg.Port,
		"chain_id", cfg.Chain.ChainID,
		"jobstore_backend", cfg.JobStore.Backend,
	)
	srv.Start()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Stop(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("ingestor exited: %w", err)
	}
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

func buildJobStore(cfg *config.JobStoreConfig, l *zap.Logger) (jobstore.Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return jobstorememory.New(), nil
	case "badger":
		return jobstorebadger.New(cfg.DataPath, l)
	case "redis":
		return jobstoreredis.New(&jobstoreredis.Config{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, l)
	default:
		return nil, fmt.Errorf("unknown jobstore backend %q", cfg.Backend)
	}
}
