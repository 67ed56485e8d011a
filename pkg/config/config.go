// Package config centralizes the environment-variable names and
// validated configuration structs shared by the computer, challenger,
// and proof-server commands.
package config

import "fmt"

// Environment variable names, mirrored by the matching CLI flag in each
// cmd/* binary.
const (
	EnvRPCURL                  = "OPENRANK_RPC_URL"
	EnvChainID                 = "OPENRANK_CHAIN_ID"
	EnvCoordinatorAddress      = "OPENRANK_COORDINATOR_ADDRESS"
	EnvPrivateKey              = "OPENRANK_PRIVATE_KEY"
	EnvBlockHistory            = "OPENRANK_BLOCK_HISTORY"
	EnvLogPullSeconds          = "OPENRANK_LOG_PULL_SECONDS"
	EnvGateOnChallengeWindow   = "OPENRANK_GATE_ON_CHALLENGE_WINDOW"
	EnvVerbose                 = "OPENRANK_VERBOSE"
	EnvBlobBackend             = "OPENRANK_BLOB_BACKEND"
	EnvBlobCacheDataPath       = "OPENRANK_BLOB_CACHE_DATA_PATH"
	EnvS3Bucket                = "OPENRANK_S3_BUCKET"
	EnvS3Region                = "OPENRANK_S3_REGION"
	EnvJobStoreBackend         = "OPENRANK_JOBSTORE_BACKEND"
	EnvJobStoreDataPath        = "OPENRANK_JOBSTORE_DATA_PATH"
	EnvRedisAddress            = "OPENRANK_REDIS_ADDRESS"
	EnvRedisPassword           = "OPENRANK_REDIS_PASSWORD"
	EnvRedisDB                 = "OPENRANK_REDIS_DB"
	EnvProofServerPort         = "OPENRANK_PROOF_SERVER_PORT"
)

// ChainConfig bundles the fields every service needs to tail the
// coordinator and sign transactions.
type ChainConfig struct {
	RPCURL              string
	ChainID             uint64
	CoordinatorAddress  string
	PrivateKey          string
	BlockHistory        uint64
	LogPullSeconds      uint64
}

// Validate checks that the fields required to dial the chain and
// identify the coordinator contract are present.
func (c *ChainConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("config: rpc url is required")
	}
	if c.CoordinatorAddress == "" {
		return fmt.Errorf("config: coordinator address is required")
	}
	if c.BlockHistory == 0 {
		return fmt.Errorf("config: block history must be greater than zero")
	}
	if c.LogPullSeconds == 0 {
		return fmt.Errorf("config: log pull interval must be greater than zero")
	}
	return nil
}

// BlobConfig selects and configures the blob store backends (§4.F):
// Badger as the local cache in front of S3 as the canonical remote.
type BlobConfig struct {
	Backend       string // "memory" or "cached" (badger + s3)
	CacheDataPath string
	S3Bucket      string
	S3Region      string
}

// Validate checks the fields required by the selected backend.
func (c *BlobConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "cached", "":
		if c.S3Bucket == "" {
			return fmt.Errorf("config: s3 bucket is required for the cached blob backend")
		}
		return nil
	default:
		return fmt.Errorf("config: unknown blob backend %q", c.Backend)
	}
}

// JobStoreConfig selects and configures the proof server's persistence
// of per-compute-id JobMetadata.
type JobStoreConfig struct {
	Backend       string // "memory", "badger", or "redis"
	DataPath      string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
}

// Validate checks the fields required by the selected backend.
func (c *JobStoreConfig) Validate() error {
	switch c.Backend {
	case "memory", "":
		return nil
	case "badger":
		if c.DataPath == "" {
			return fmt.Errorf("config: data path is required for the badger jobstore backend")
		}
		return nil
	case "redis":
		if c.RedisAddress == "" {
			return fmt.Errorf("config: redis address is required for the redis jobstore backend")
		}
		return nil
	default:
		return fmt.Errorf("config: unknown jobstore backend %q", c.Backend)
	}
}

// ComputerConfig is the computer command's full configuration.
type ComputerConfig struct {
	Chain   ChainConfig
	Blob    BlobConfig
	Verbose bool
}

func (c *ComputerConfig) Validate() error {
	if err := c.Chain.Validate(); err != nil {
		return err
	}
	return c.Blob.Validate()
}

// ChallengerConfig is the challenger command's full configuration.
type ChallengerConfig struct {
	Chain                ChainConfig
	Blob                 BlobConfig
	GateOnChallengeWindow bool
	Verbose              bool
}

func (c *ChallengerConfig) Validate() error {
	if err := c.Chain.Validate(); err != nil {
		return err
	}
	return c.Blob.Validate()
}

// ProofServerConfig is the proof-server command's full configuration.
// Its Ingestor tails the coordinator for MetaComputeResult events but
// never submits transactions, so Chain.PrivateKey is left empty.
type ProofServerConfig struct {
	Port     int
	Chain    ChainConfig
	Blob     BlobConfig
	JobStore JobStoreConfig
	Verbose  bool
}

func (c *ProofServerConfig) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("config: port must be greater than zero")
	}
	if err := c.Chain.Validate(); err != nil {
		return err
	}
	if err := c.Blob.Validate(); err != nil {
		return err
	}
	return c.JobStore.Validate()
}
