package eth

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// ErrReceiptTimeout is returned when no receipt arrived within the wait.
var ErrReceiptTimeout = errors.New("transaction receipt wait timed out")

// Backend is a node API. Both ethclient.Client and the simulated backend
// implement it.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context,
		txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context,
		txHash common.Hash) (*types.Transaction, bool, error)
}

// TxRequest is an unsigned contract call. Zero gas parameters are
// resolved from the node.
type TxRequest struct {
	To       *common.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
}

// Client is an Ethereum JSON-RPC client.
type Client struct {
	rpcCli  *rpc.Client
	ethCli  *ethclient.Client
	backend Backend
	chainID *big.Int
}

// NewClient creates a new Ethereum JSON-RPC client.
func NewClient(ctx context.Context, url string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}

	ethCli := ethclient.NewClient(rpcClient)

	chainID, err := ethCli.ChainID(ctx)
	if err != nil {
		rpcClient.Close()
		return nil, errors.Wrap(err, "failed to get chain id")
	}

	return &Client{
		rpcCli:  rpcClient,
		ethCli:  ethCli,
		backend: ethCli,
		chainID: chainID,
	}, nil
}

// NewBackendClient creates a client over an already connected backend.
func NewBackendClient(backend Backend, chainID *big.Int) *Client {
	return &Client{backend: backend, chainID: chainID}
}

// Close closes an Ethereum JSON-RPC client.
func (c *Client) Close() {
	if c.rpcCli != nil {
		c.rpcCli.Close()
	}
}

// ChainID returns the chain id transactions are signed for.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// BlockNumber returns the number of the latest block.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	header, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// PendingNonceAt returns the next nonce of the account including pool
// transactions.
func (c *Client) PendingNonceAt(ctx context.Context,
	account common.Address) (uint64, error) {
	return c.backend.PendingNonceAt(ctx, account)
}

// BuildTransaction creates an unsigned legacy transaction from req.
func (c *Client) BuildTransaction(ctx context.Context, from common.Address,
	nonce uint64, req TxRequest) (*types.Transaction, error) {
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	gasPrice := req.GasPrice
	if gasPrice == nil {
		var err error
		gasPrice, err = c.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to suggest gas price")
		}
	}

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		var err error
		gasLimit, err = c.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:     from,
			To:       req.To,
			GasPrice: gasPrice,
			Value:    value,
			Data:     req.Data,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to estimate gas")
		}
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       req.To,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     req.Data,
	}), nil
}

// Submit sends a signed transaction to the node.
func (c *Client) Submit(ctx context.Context,
	tx *types.Transaction) (common.Hash, error) {
	if err := c.backend.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// AwaitReceipt polls for a receipt until it arrives, timeout elapses or
// ctx is done.
func (c *Client) AwaitReceipt(ctx context.Context, hash common.Hash,
	timeout, poll time.Duration) (*types.Receipt, error) {
	return WaitReceipt(ctx, c.backend, hash, timeout, poll)
}

// TransactionByHash returns a transaction and whether it is still pending.
func (c *Client) TransactionByHash(ctx context.Context,
	hash common.Hash) (*types.Transaction, bool, error) {
	return c.backend.TransactionByHash(ctx, hash)
}

// TransactionReceipt returns a receipt, nil if the transaction is not
// mined yet.
func (c *Client) TransactionReceipt(ctx context.Context,
	hash common.Hash) (*types.Receipt, error) {
	receipt, err := c.backend.TransactionReceipt(ctx, hash)
	if err == ethereum.NotFound {
		return nil, nil
	}
	return receipt, err
}

// ReadContractState calls a constant contract method at the latest block
// and returns its unpacked outputs.
func (c *Client) ReadContractState(ctx context.Context,
	address common.Address, contract abi.ABI, method string,
	args ...interface{}) ([]interface{}, error) {
	input, err := contract.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s", method)
	}

	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{
		To:   &address,
		Data: input,
	}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s", method)
	}

	return contract.Unpack(method, output)
}

// FilterLogs returns logs matching q.
func (c *Client) FilterLogs(ctx context.Context,
	q ethereum.FilterQuery) ([]types.Log, error) {
	return c.backend.FilterLogs(ctx, q)
}

// SyncProgress returns the node synchronization state, nil when the node
// is in sync.
func (c *Client) SyncProgress(
	ctx context.Context) (*ethereum.SyncProgress, error) {
	if c.ethCli == nil {
		return nil, nil
	}
	return c.ethCli.SyncProgress(ctx)
}

// WaitReceipt polls backend for a receipt.
func WaitReceipt(ctx context.Context, backend bind.DeployBackend,
	hash common.Hash, timeout, poll time.Duration) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		receipt, err := backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		if err != nil && err != ethereum.NotFound &&
			ctx.Err() == nil {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ErrReceiptTimeout
		case <-ticker.C:
		}
	}
}
