package transactionSigner

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// fallbackGasTipCap is used when the RPC endpoint does not support
// eth_maxPriorityFeePerGas.
var fallbackGasTipCap = big.NewInt(1_500_000_000) // 1.5 gwei

// PrivateKeySigner implements ITransactionSigner by holding the
// operator's ECDSA private key in memory and signing locally.
type PrivateKeySigner struct {
	ethClient  *ethclient.Client
	logger     *zap.Logger
	chainID    *big.Int
	privateKey string
	fromAddr   common.Address
}

// NewPrivateKeySigner derives the signing address from privateKeyHex
// (with or without a leading "0x") and fetches the chain ID once.
func NewPrivateKeySigner(privateKeyHex string, ethClient *ethclient.Client, logger *zap.Logger) (*PrivateKeySigner, error) {
	pk, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	chainID, err := ethClient.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	return &PrivateKeySigner{
		ethClient:  ethClient,
		logger:     logger,
		chainID:    chainID,
		privateKey: privateKeyHex,
		fromAddr:   crypto.PubkeyToAddress(pk.PublicKey),
	}, nil
}

// GetTransactOpts returns transaction options with NoSend set; callers
// build an unsigned transaction with these opts and pass it to
// SignAndSendTransaction.
func (s *PrivateKeySigner) GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	pk, err := crypto.HexToECDSA(strings.TrimPrefix(s.privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(pk, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx
	opts.NoSend = true
	return opts, nil
}

// GetFromAddress returns the signer's address.
func (s *PrivateKeySigner) GetFromAddress() common.Address {
	return s.fromAddr
}

// EstimateGasPriceAndLimit estimates the gas tip cap and a buffered gas
// limit for tx.
func (s *PrivateKeySigner) EstimateGasPriceAndLimit(ctx context.Context, tx *types.Transaction) (*big.Int, uint64, error) {
	gasTipCap, err := s.ethClient.SuggestGasTipCap(ctx)
	if err != nil {
		s.logger.Sugar().Warnw("EstimateGasPriceAndLimit: cannot get gasTipCap, using fallback", "error", err)
		gasTipCap = fallbackGasTipCap
	}

	gasLimit, err := s.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From:  s.fromAddr,
		To:    tx.To(),
		Value: tx.Value(),
		Data:  tx.Data(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to estimate gas: %w", err)
	}

	return gasTipCap, addGasBuffer(gasLimit), nil
}

// SignAndSendTransaction signs tx locally with an EIP-1559 fee
// envelope, sends it, and waits for its receipt.
func (s *PrivateKeySigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	pk, err := crypto.HexToECDSA(strings.TrimPrefix(s.privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	gasTipCap, gasLimit, err := s.EstimateGasPriceAndLimit(ctx, tx)
	if err != nil {
		return nil, err
	}

	header, err := s.ethClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block header: %w", err)
	}
	maxFeePerGas := new(big.Int).Add(new(big.Int).Mul(header.BaseFee, big.NewInt(2)), gasTipCap)

	nonce, err := s.ethClient.PendingNonceAt(ctx, s.fromAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: maxFeePerGas,
		Gas:       gasLimit,
		To:        tx.To(),
		Value:     tx.Value(),
		Data:      tx.Data(),
	})

	signedTx, err := types.SignTx(unsigned, types.LatestSignerForChainID(s.chainID), pk)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	s.logger.Sugar().Infow("SignAndSendTransaction: sending transaction",
		"to", tx.To().Hex(),
		"gasTipCap", gasTipCap.String(),
		"maxFeePerGas", maxFeePerGas.String(),
		"nonce", nonce,
	)

	if err := s.ethClient.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, s.ethClient, signedTx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction receipt: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction failed with status %d", receipt.Status)
	}

	s.logger.Sugar().Infow("SignAndSendTransaction: transaction succeeded",
		"txHash", receipt.TxHash.Hex(),
		"gasUsed", receipt.GasUsed,
	)
	return receipt, nil
}

func addGasBuffer(gasLimit uint64) uint64 {
	return gasLimit + gasLimit/5
}
