package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/mihai6/FiatSim/internal/logger"
	"github.com/rs/zerolog"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrKeyInvalid          = errors.New("signing key is invalid")
	ErrRPCConnectionFailed = errors.New("RPC connection failed")
	ErrChainIDFailed       = errors.New("chain ID lookup failed")
	ErrTxBuildFailed       = errors.New("transaction build failed")
	ErrTxReverted          = errors.New("transaction reverted")
	ErrReceiptTimeout      = errors.New("receipt not found in time")
)

// Client signs and sends transactions for a single EVM account and exposes the
// hardhat node controls the simulation needs.
type Client struct {
	rpc     *rpc.Client
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
	logger  zerolog.Logger

	receiptTimeout time.Duration
}

// NewClient dials the node and prepares the signer.
func NewClient(ctx context.Context, nodeURL, privateKeyHex string) (*Client, error) {
	if strings.TrimSpace(nodeURL) == "" {
		return nil, fmt.Errorf("%w: node URL is empty", ErrInvalidConfig)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, errors.Join(ErrKeyInvalid, err)
	}

	rpcClient, err := rpc.DialContext(ctx, nodeURL)
	if err != nil {
		return nil, errors.Join(ErrRPCConnectionFailed, err)
	}
	ethClient := ethclient.NewClient(rpcClient)

	chainID, err := ethClient.ChainID(ctx)
	if err != nil {
		rpcClient.Close()
		return nil, errors.Join(ErrChainIDFailed, err)
	}

	c := &Client{
		rpc:            rpcClient,
		eth:            ethClient,
		key:            key,
		address:        crypto.PubkeyToAddress(key.PublicKey),
		chainID:        chainID,
		logger:         logger.GetForComponent("wallet_client"),
		receiptTimeout: 30 * time.Second,
	}

	c.logger.Info().
		Str("address", c.address.Hex()).
		Str("chainID", chainID.String()).
		Msg("Wallet client connected")

	return c, nil
}

// Address returns the signer address.
func (c *Client) Address() common.Address {
	return c.address
}

// Eth exposes the typed client for contract bindings.
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

// TransactOpts returns fresh signing options bound to ctx.
func (c *Client) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, errors.Join(ErrTxBuildFailed, err)
	}
	opts.Context = ctx
	return opts, nil
}

// CallOpts returns read options bound to ctx, sent from the signer.
func (c *Client) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: c.address}
}

// NativeBalance returns the signer's ETH balance in wei.
func (c *Client) NativeBalance(ctx context.Context) (*big.Int, error) {
	bal, err := c.eth.BalanceAt(ctx, c.address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read native balance of %s: %w", c.address.Hex(), err)
	}
	return bal, nil
}

// HeaderTime returns the timestamp of block number, or of the latest block when number is nil.
func (c *Client) HeaderTime(ctx context.Context, number *big.Int) (time.Time, error) {
	header, err := c.eth.HeaderByNumber(ctx, number)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read block header: %w", err)
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.logger.Info().Msg("Closing wallet client")
	c.rpc.Close()
}
