// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"math/big"
	"sync"

	"github.com/luxfi/geth/common"
)

const stablePoolABI = `[{"name":"exchange","type":"function","inputs":[
	{"name":"i","type":"int128"},
	{"name":"j","type":"int128"},
	{"name":"dx","type":"uint256"},
	{"name":"min_dy","type":"uint256"}]}]`

const stableMetaABI = `[{"name":"exchange_underlying","type":"function","inputs":[
	{"name":"i","type":"int128"},
	{"name":"j","type":"int128"},
	{"name":"dx","type":"uint256"},
	{"name":"min_dy","type":"uint256"}]}]`

const stableSpecialMetaABI = `[{"name":"exchange_underlying","type":"function","inputs":[
	{"name":"i","type":"uint256"},
	{"name":"j","type":"uint256"},
	{"name":"dx","type":"uint256"},
	{"name":"min_dy","type":"uint256"},
	{"name":"receiver","type":"address"}]}]`

// coinTable maps a pool address to its ordered coin list. Stable-pool
// calldata carries coin indices rather than addresses, so the codec needs
// this table to report tokens; it is mutable configuration state.
type coinTable struct {
	coins map[common.Address][]common.Address
	mu    sync.RWMutex
}

func newCoinTable() *coinTable {
	return &coinTable{coins: make(map[common.Address][]common.Address)}
}

func (t *coinTable) set(pool common.Address, coins []common.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.coins[pool] = coins
}

func (t *coinTable) lookup(pool common.Address, i, j *big.Int) (common.Address, common.Address, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	coins, ok := t.coins[pool]
	if !ok {
		return common.Address{}, common.Address{}, ErrUnknownPool
	}
	if !i.IsInt64() || !j.IsInt64() {
		return common.Address{}, common.Address{}, ErrMalformedCalldata
	}
	ii, jj := i.Int64(), j.Int64()
	if ii < 0 || jj < 0 || ii >= int64(len(coins)) || jj >= int64(len(coins)) {
		return common.Address{}, common.Address{}, ErrMalformedCalldata
	}
	return coins[ii], coins[jj], nil
}

// StablePoolCodec handles plain stable pools: exchange(i, j, dx, min_dy).
// Output is always returned to the caller.
type StablePoolCodec struct {
	abi   extendedABI
	coins *coinTable
}

// NewStablePoolCodec creates the plain stable-pool codec.
func NewStablePoolCodec() *StablePoolCodec {
	return &StablePoolCodec{abi: parseABI(stablePoolABI), coins: newCoinTable()}
}

// RegisterPool records a pool's ordered coin list.
func (c *StablePoolCodec) RegisterPool(pool common.Address, coins []common.Address) {
	c.coins.set(pool, coins)
}

// Selector returns the function selector this codec decodes.
func (c *StablePoolCodec) Selector() [4]byte {
	return c.abi.selector("exchange")
}

func (c *StablePoolCodec) Decode(dex common.Address, data []byte) (SwapDetails, error) {
	return decodeIndexedExchange(c.abi, "exchange", c.coins, dex, data)
}

func (c *StablePoolCodec) EncodeAmountIn(data []byte, amountIn *big.Int) ([]byte, error) {
	values, err := c.abi.unpackInput("exchange", data)
	if err != nil {
		return nil, err
	}
	return c.abi.packInput("exchange", values[0], values[1], amountIn, values[3])
}

// StableMetaCodec handles meta pools that swap through underlying assets:
// exchange_underlying(i, j, dx, min_dy) with indices into the underlying
// coin list rather than the pool's own.
type StableMetaCodec struct {
	abi        extendedABI
	underlying *coinTable
}

// NewStableMetaCodec creates the meta-pool codec.
func NewStableMetaCodec() *StableMetaCodec {
	return &StableMetaCodec{abi: parseABI(stableMetaABI), underlying: newCoinTable()}
}

// RegisterPool records a meta pool's ordered underlying coin list.
func (c *StableMetaCodec) RegisterPool(pool common.Address, underlying []common.Address) {
	c.underlying.set(pool, underlying)
}

// Selector returns the function selector this codec decodes.
func (c *StableMetaCodec) Selector() [4]byte {
	return c.abi.selector("exchange_underlying")
}

func (c *StableMetaCodec) Decode(dex common.Address, data []byte) (SwapDetails, error) {
	return decodeIndexedExchange(c.abi, "exchange_underlying", c.underlying, dex, data)
}

func (c *StableMetaCodec) EncodeAmountIn(data []byte, amountIn *big.Int) ([]byte, error) {
	values, err := c.abi.unpackInput("exchange_underlying", data)
	if err != nil {
		return nil, err
	}
	return c.abi.packInput("exchange_underlying", values[0], values[1], amountIn, values[3])
}

// StableSpecialMetaCodec handles the positional-argument meta-pool variant:
// exchange_underlying(uint256 i, uint256 j, dx, min_dy, receiver). The
// selector differs from the plain meta pool because the index types differ.
type StableSpecialMetaCodec struct {
	abi        extendedABI
	underlying *coinTable
}

// NewStableSpecialMetaCodec creates the positional meta-pool codec.
func NewStableSpecialMetaCodec() *StableSpecialMetaCodec {
	return &StableSpecialMetaCodec{abi: parseABI(stableSpecialMetaABI), underlying: newCoinTable()}
}

// RegisterPool records the pool's ordered underlying coin list.
func (c *StableSpecialMetaCodec) RegisterPool(pool common.Address, underlying []common.Address) {
	c.underlying.set(pool, underlying)
}

// Selector returns the function selector this codec decodes.
func (c *StableSpecialMetaCodec) Selector() [4]byte {
	return c.abi.selector("exchange_underlying")
}

func (c *StableSpecialMetaCodec) Decode(dex common.Address, data []byte) (SwapDetails, error) {
	values, err := c.abi.unpackInput("exchange_underlying", data)
	if err != nil {
		return SwapDetails{}, err
	}
	i, ok1 := values[0].(*big.Int)
	j, ok2 := values[1].(*big.Int)
	dx, ok3 := values[2].(*big.Int)
	minDy, ok4 := values[3].(*big.Int)
	receiver, ok5 := values[4].(common.Address)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return SwapDetails{}, ErrMalformedCalldata
	}

	tokenIn, tokenOut, err := c.underlying.lookup(dex, i, j)
	if err != nil {
		return SwapDetails{}, err
	}
	return SwapDetails{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		AmountIn:     dx,
		MinAmountOut: minDy,
		Recipient:    receiver,
	}, nil
}

func (c *StableSpecialMetaCodec) EncodeAmountIn(data []byte, amountIn *big.Int) ([]byte, error) {
	values, err := c.abi.unpackInput("exchange_underlying", data)
	if err != nil {
		return nil, err
	}
	return c.abi.packInput("exchange_underlying", values[0], values[1], amountIn, values[3], values[4])
}

// decodeIndexedExchange is shared by the int128-indexed exchange variants.
func decodeIndexedExchange(a extendedABI, method string, table *coinTable, dex common.Address, data []byte) (SwapDetails, error) {
	values, err := a.unpackInput(method, data)
	if err != nil {
		return SwapDetails{}, err
	}
	i, ok1 := values[0].(*big.Int)
	j, ok2 := values[1].(*big.Int)
	dx, ok3 := values[2].(*big.Int)
	minDy, ok4 := values[3].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return SwapDetails{}, ErrMalformedCalldata
	}

	tokenIn, tokenOut, err := table.lookup(dex, i, j)
	if err != nil {
		return SwapDetails{}, err
	}
	return SwapDetails{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		AmountIn:     dx,
		MinAmountOut: minDy,
		// Output returns to the caller.
		Recipient: common.Address{},
	}, nil
}
