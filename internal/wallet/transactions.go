package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// WaitMined blocks until tx is mined and fails if it reverted.
func (c *Client) WaitMined(ctx context.Context, tx *ethtypes.Transaction, label string) (*ethtypes.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed waiting for tx %s: %w", label, tx.Hash().Hex(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%s: %w: tx %s", label, ErrTxReverted, tx.Hash().Hex())
	}

	c.logger.Debug().
		Str("action", label).
		Str("txHash", tx.Hash().Hex()).
		Uint64("gasUsed", receipt.GasUsed).
		Msg("Transaction mined")

	return receipt, nil
}

// SendUnsigned submits a transaction from an account the node signs for, i.e. an
// impersonated account, and waits for its receipt.
func (c *Client) SendUnsigned(ctx context.Context, from, to common.Address, data []byte, label string) (*ethtypes.Receipt, error) {
	args := map[string]interface{}{
		"from": from.Hex(),
		"to":   to.Hex(),
		"data": hexutil.Encode(data),
	}

	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return nil, fmt.Errorf("%s: eth_sendTransaction from %s failed: %w", label, from.Hex(), err)
	}

	receipt, err := c.WaitReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%s: %w: tx %s", label, ErrTxReverted, hash.Hex())
	}
	return receipt, nil
}

// WaitReceipt polls for the receipt of hash until it exists or the receipt timeout elapses.
func (c *Client) WaitReceipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	operation := func() (*ethtypes.Receipt, error) {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to fetch receipt %s: %w", hash.Hex(), err))
		}
		return receipt, nil
	}

	receipt, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(c.receiptTimeout))
	if errors.Is(err, ethereum.NotFound) {
		return nil, fmt.Errorf("%w: %s", ErrReceiptTimeout, hash.Hex())
	}
	return receipt, err
}

// ResetFork re-forks the hardhat node from forkURL at blockNumber, discarding all local state.
func (c *Client) ResetFork(ctx context.Context, forkURL string, blockNumber uint64) error {
	params := map[string]interface{}{
		"forking": map[string]interface{}{
			"jsonRpcUrl":  forkURL,
			"blockNumber": blockNumber,
		},
	}
	var ok bool
	if err := c.rpc.CallContext(ctx, &ok, "hardhat_reset", params); err != nil {
		return fmt.Errorf("hardhat_reset failed: %w", err)
	}
	c.logger.Debug().Uint64("blockNumber", blockNumber).Msg("Fork reset")
	return nil
}

// Impersonate lets the node sign for account.
func (c *Client) Impersonate(ctx context.Context, account common.Address) error {
	var ok bool
	if err := c.rpc.CallContext(ctx, &ok, "hardhat_impersonateAccount", account.Hex()); err != nil {
		return fmt.Errorf("hardhat_impersonateAccount %s failed: %w", account.Hex(), err)
	}
	return nil
}

// StopImpersonating reverses Impersonate.
func (c *Client) StopImpersonating(ctx context.Context, account common.Address) error {
	var ok bool
	if err := c.rpc.CallContext(ctx, &ok, "hardhat_stopImpersonatingAccount", account.Hex()); err != nil {
		return fmt.Errorf("hardhat_stopImpersonatingAccount %s failed: %w", account.Hex(), err)
	}
	return nil
}

// SetBalance overwrites the ETH balance of account.
func (c *Client) SetBalance(ctx context.Context, account common.Address, wei *big.Int) error {
	if err := c.rpc.CallContext(ctx, nil, "hardhat_setBalance", account.Hex(), hexutil.EncodeBig(wei)); err != nil {
		return fmt.Errorf("hardhat_setBalance %s failed: %w", account.Hex(), err)
	}
	return nil
}
