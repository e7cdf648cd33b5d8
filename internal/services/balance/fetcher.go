// Package balance aggregates native and token balances of an address.
package balance

import (
	"context"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/privacyx/guardian/internal/domain"
	"github.com/shopspring/decimal"
)

// tokenFractionDigits fractional digits shown for token holdings.
const tokenFractionDigits = 4

// ErrFetch wraps every chain failure; a failed fetch never yields a partial list.
var ErrFetch = errors.New("balance fetch failed")

// fetchError matches ErrFetch and unwraps to the chain failure.
type fetchError struct {
	cause error
}

func (e fetchError) Error() string {
	return ErrFetch.Error() + ": " + e.cause.Error()
}

func (e fetchError) Is(target error) bool {
	return target == ErrFetch
}

func (e fetchError) Unwrap() error {
	return e.cause
}

func (e fetchError) Cause() error {
	return e.cause
}

type chainClient interface {
	GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)
	GetTokenBalance(ctx context.Context, tokenAddress string, walletAddress string) (*big.Int, error)
}

// Fetcher queries a fixed token set for any address.
type Fetcher struct {
	chain  chainClient
	native domain.TokenDescriptor
	tokens []domain.TokenDescriptor
}

// NewFetcher creates a Fetcher over the injected chain client and token configuration.
func NewFetcher(chain chainClient, native domain.TokenDescriptor, tokens []domain.TokenDescriptor) *Fetcher {
	return &Fetcher{
		chain:  chain,
		native: native,
		tokens: append([]domain.TokenDescriptor{}, tokens...),
	}
}

// Fetch returns the balances of address using the configured descriptors.
func (f *Fetcher) Fetch(ctx context.Context, address string) ([]domain.Balance, error) {
	return Fetch(ctx, f.chain, address, f.native, f.tokens)
}

// Fetch queries the native balance first, then every token in configuration order.
// The native entry is always present; tokens with a zero balance are omitted.
func Fetch(ctx context.Context, chain chainClient, address string, native domain.TokenDescriptor, tokens []domain.TokenDescriptor) ([]domain.Balance, error) {
	nativeRaw, err := chain.GetNativeBalance(ctx, address)
	if err != nil {
		return nil, fetchError{errors.Wrapf(err, "native balance of %s", address)}
	}

	balances := make([]domain.Balance, 0, len(tokens)+1)
	balances = append(balances, domain.NewBalance(native, FormatNative(nativeRaw, native.Decimals), true))

	for _, token := range tokens {
		raw, err := chain.GetTokenBalance(ctx, token.Contract, address)
		if err != nil {
			return nil, fetchError{errors.Wrapf(err, "%s balance of %s", token.Symbol, address)}
		}
		if raw == nil || raw.Sign() <= 0 {
			continue
		}
		balances = append(balances, domain.NewBalance(token, FormatToken(raw, token.Decimals), false))
	}

	return balances, nil
}

// FormatNative renders base units with full precision and at least one fractional digit,
// e.g. 2500000000000000000 wei => "2.5", 0 => "0.0".
func FormatNative(raw *big.Int, decimals uint8) string {
	if raw == nil {
		raw = big.NewInt(0)
	}
	s := decimal.NewFromBigInt(raw, -int32(decimals)).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatToken renders base units rounded to four fractional digits, e.g. "12.3457".
func FormatToken(raw *big.Int, decimals uint8) string {
	if raw == nil {
		raw = big.NewInt(0)
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).StringFixed(tokenFractionDigits)
}
