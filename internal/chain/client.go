package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"clad/internal/errkind"
	"clad/internal/retry"
)

var ErrAccountNotFound = errkind.New(errkind.Validation, "account not found")

// AccountReader is the subset of the Solana RPC client the Client uses.
type AccountReader interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// Account is the raw data and owner of an account.
type Account struct {
	Address solana.PublicKey
	Owner   solana.PublicKey
	Slot    uint64
	Data    []byte
}

// Options tunes retries for account reads.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	Commitment   rpc.CommitmentType
}

// Client wraps the solana-go RPC client and retries transient failures.
type Client struct {
	rpcClient *rpc.Client
	reader    AccountReader
	opts      Options
	logger    *zap.Logger
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(rpcURL string, opts Options, logger *zap.Logger) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	rpcClient := rpc.New(rpcURL)
	c := NewClientWithReader(rpcClient, opts, logger)
	c.rpcClient = rpcClient
	return c, nil
}

// NewClientWithReader builds a Client over any AccountReader.
func NewClientWithReader(reader AccountReader, opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	return &Client{reader: reader, opts: opts, logger: logger}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		_ = c.rpcClient.Close()
	}
}

// AccountData fetches one account. A missing account is not retried.
func (c *Client) AccountData(ctx context.Context, address solana.PublicKey) (Account, error) {
	var out Account
	err := retry.Do(ctx, c.opts.MaxRetries, c.opts.RetryBackoff, func(ctx context.Context) error {
		res, err := c.reader.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
			Commitment: c.opts.Commitment,
		})
		if errors.Is(err, rpc.ErrNotFound) || (err == nil && (res == nil || res.Value == nil)) {
			return fmt.Errorf("%w: %s", ErrAccountNotFound, address)
		}
		if err != nil {
			c.logger.Warn("get account info failed", zap.Error(err), zap.Stringer("address", address))
			return err
		}
		out = Account{
			Address: address,
			Owner:   res.Value.Owner,
			Slot:    res.Context.Slot,
			Data:    res.Value.Data.GetBinary(),
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return out, nil
}
