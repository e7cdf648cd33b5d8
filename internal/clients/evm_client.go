package clients

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

const defaultRPCCallTimeout = 15 * time.Second

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
)

func erc20() abi.ABI {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
	return parsedERC20ABI
}

// evmBackend is the subset of ethclient.Client used for balance queries.
type evmBackend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// EVMClient reads native and ERC-20 balances from an EVM-compatible chain.
type EVMClient struct {
	backend        evmBackend
	rpcCallTimeout time.Duration
	closeFn        func()
}

// NewEVMClient wraps an already connected backend.
func NewEVMClient(backend evmBackend, rpcCallTimeout time.Duration) *EVMClient {
	if rpcCallTimeout <= 0 {
		rpcCallTimeout = defaultRPCCallTimeout
	}
	return &EVMClient{backend: backend, rpcCallTimeout: rpcCallTimeout, closeFn: func() {}}
}

// DialEVMClient connects to the first reachable RPC endpoint.
func DialEVMClient(ctx context.Context, rpcURLs []string, connectionTimeout, rpcCallTimeout time.Duration) (*EVMClient, error) {
	if len(rpcURLs) == 0 {
		return nil, errors.New("no RPC endpoints configured")
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		dialCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
		client, err := ethclient.DialContext(dialCtx, rpcURL)
		cancel()
		if err != nil {
			lastErr = errors.Wrapf(err, "failed to connect to RPC %s", rpcURL)
			continue
		}

		c := NewEVMClient(client, rpcCallTimeout)
		c.closeFn = client.Close
		return c, nil
	}

	return nil, errors.Wrap(lastErr, "all RPC connection attempts failed")
}

// GetNativeBalance returns the native currency balance in base units (wei).
func (c *EVMClient) GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	account, err := parseAddress(walletAddress)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	balance, err := c.backend.BalanceAt(callCtx, account, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "eth_getBalance for %s", walletAddress)
	}
	if balance == nil {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// GetTokenBalance calls balanceOf(walletAddress) on the token contract and returns base units.
func (c *EVMClient) GetTokenBalance(ctx context.Context, tokenAddress string, walletAddress string) (*big.Int, error) {
	account, err := parseAddress(walletAddress)
	if err != nil {
		return nil, err
	}
	token, err := parseAddress(tokenAddress)
	if err != nil {
		return nil, err
	}

	contract := erc20()
	callData, err := contract.Pack("balanceOf", account)
	if err != nil {
		return nil, errors.Wrap(err, "pack balanceOf call")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	result, err := c.backend.CallContract(callCtx, ethereum.CallMsg{To: &token, Data: callData}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "balanceOf %s on %s", walletAddress, tokenAddress)
	}
	if len(result) == 0 {
		return big.NewInt(0), nil
	}

	unpacked, err := contract.Unpack("balanceOf", result)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack balanceOf result for %s", tokenAddress)
	}
	if len(unpacked) == 0 {
		return nil, errors.Errorf("balanceOf unpack returned no data for %s", tokenAddress)
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("unexpected balanceOf result type %T for %s", unpacked[0], tokenAddress)
	}
	return balance, nil
}

// Close releases the RPC connection.
func (c *EVMClient) Close() {
	c.closeFn()
}

func parseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, errors.Errorf("invalid address %q", address)
	}
	return common.HexToAddress(address), nil
}
