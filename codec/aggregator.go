// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"math/big"
	"sync"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

const aggregatorABI = `[
	{"name":"swap","type":"function","inputs":[
		{"name":"executor","type":"address"},
		{"name":"desc","type":"tuple","components":[
			{"name":"srcToken","type":"address"},
			{"name":"dstToken","type":"address"},
			{"name":"srcReceiver","type":"address"},
			{"name":"dstReceiver","type":"address"},
			{"name":"amount","type":"uint256"},
			{"name":"minReturnAmount","type":"uint256"},
			{"name":"flags","type":"uint256"}]},
		{"name":"data","type":"bytes"}]},
	{"name":"unoswap","type":"function","inputs":[
		{"name":"srcToken","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"minReturn","type":"uint256"},
		{"name":"pools","type":"bytes32[]"}]},
	{"name":"fillOrderRFQ","type":"function","inputs":[
		{"name":"order","type":"tuple","components":[
			{"name":"info","type":"uint256"},
			{"name":"makerAsset","type":"address"},
			{"name":"takerAsset","type":"address"},
			{"name":"maker","type":"address"},
			{"name":"allowedSender","type":"address"},
			{"name":"makingAmount","type":"uint256"},
			{"name":"takingAmount","type":"uint256"}]},
		{"name":"signature","type":"bytes"},
		{"name":"makingAmount","type":"uint256"},
		{"name":"takingAmount","type":"uint256"}]}]`

type aggSwapDesc struct {
	SrcToken        common.Address
	DstToken        common.Address
	SrcReceiver     common.Address
	DstReceiver     common.Address
	Amount          *big.Int
	MinReturnAmount *big.Int
	Flags           *big.Int
}

type aggRFQOrder struct {
	Info          *big.Int
	MakerAsset    common.Address
	TakerAsset    common.Address
	Maker         common.Address
	AllowedSender common.Address
	MakingAmount  *big.Int
	TakingAmount  *big.Int
}

// AggregatorCodec handles an aggregation router exposing several distinct
// call shapes: a plain swap with an explicit description, a single-pool
// unoswap, and an RFQ limit-order fill. Decoding dispatches again on the
// selector, so one codec instance registers under all three.
type AggregatorCodec struct {
	abi extendedABI

	// unoswap carries pool identifiers, not token addresses; the terminal
	// pool's output token is configuration state.
	poolOut map[common.Hash]common.Address
	mu      sync.RWMutex
}

// NewAggregatorCodec creates the aggregation-router codec.
func NewAggregatorCodec() *AggregatorCodec {
	return &AggregatorCodec{
		abi:     parseABI(aggregatorABI),
		poolOut: make(map[common.Hash]common.Address),
	}
}

// RegisterPool records the output token of a unoswap pool identifier.
func (c *AggregatorCodec) RegisterPool(pool common.Hash, tokenOut common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.poolOut[pool] = tokenOut
}

// Selectors returns every function selector this codec decodes.
func (c *AggregatorCodec) Selectors() [][4]byte {
	return [][4]byte{
		c.abi.selector("swap"),
		c.abi.selector("unoswap"),
		c.abi.selector("fillOrderRFQ"),
	}
}

func (c *AggregatorCodec) Decode(dex common.Address, data []byte) (SwapDetails, error) {
	sel, err := Selector(data)
	if err != nil {
		return SwapDetails{}, err
	}

	switch sel {
	case c.abi.selector("swap"):
		return c.decodeSwap(data)
	case c.abi.selector("unoswap"):
		return c.decodeUnoswap(data)
	case c.abi.selector("fillOrderRFQ"):
		return c.decodeRFQ(data)
	default:
		return SwapDetails{}, ErrUnknownSelector
	}
}

func (c *AggregatorCodec) EncodeAmountIn(data []byte, amountIn *big.Int) ([]byte, error) {
	sel, err := Selector(data)
	if err != nil {
		return nil, err
	}

	switch sel {
	case c.abi.selector("swap"):
		values, err := c.abi.unpackInput("swap", data)
		if err != nil {
			return nil, err
		}
		desc := *abi.ConvertType(values[1], new(aggSwapDesc)).(*aggSwapDesc)
		desc.Amount = amountIn
		return c.abi.packInput("swap", values[0], desc, values[2])

	case c.abi.selector("unoswap"):
		values, err := c.abi.unpackInput("unoswap", data)
		if err != nil {
			return nil, err
		}
		return c.abi.packInput("unoswap", values[0], amountIn, values[2], values[3])

	case c.abi.selector("fillOrderRFQ"):
		values, err := c.abi.unpackInput("fillOrderRFQ", data)
		if err != nil {
			return nil, err
		}
		// The outer taking amount overrides the order's: rewriting it is
		// how a corrected input reaches the fill.
		return c.abi.packInput("fillOrderRFQ", values[0], values[1], values[2], amountIn)

	default:
		return nil, ErrUnknownSelector
	}
}

func (c *AggregatorCodec) decodeSwap(data []byte) (SwapDetails, error) {
	values, err := c.abi.unpackInput("swap", data)
	if err != nil {
		return SwapDetails{}, err
	}
	desc := *abi.ConvertType(values[1], new(aggSwapDesc)).(*aggSwapDesc)

	return SwapDetails{
		TokenIn:      desc.SrcToken,
		TokenOut:     desc.DstToken,
		AmountIn:     desc.Amount,
		MinAmountOut: desc.MinReturnAmount,
		Recipient:    desc.DstReceiver,
	}, nil
}

func (c *AggregatorCodec) decodeUnoswap(data []byte) (SwapDetails, error) {
	values, err := c.abi.unpackInput("unoswap", data)
	if err != nil {
		return SwapDetails{}, err
	}
	srcToken, ok1 := values[0].(common.Address)
	amount, ok2 := values[1].(*big.Int)
	minReturn, ok3 := values[2].(*big.Int)
	pools, ok4 := values[3].([][32]byte)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return SwapDetails{}, ErrMalformedCalldata
	}
	if len(pools) == 0 {
		return SwapDetails{}, ErrMalformedCalldata
	}

	c.mu.RLock()
	tokenOut, ok := c.poolOut[common.Hash(pools[len(pools)-1])]
	c.mu.RUnlock()
	if !ok {
		return SwapDetails{}, ErrUnknownPool
	}

	return SwapDetails{
		TokenIn:      srcToken,
		TokenOut:     tokenOut,
		AmountIn:     amount,
		MinAmountOut: minReturn,
		// Output returns to the caller.
		Recipient: common.Address{},
	}, nil
}

func (c *AggregatorCodec) decodeRFQ(data []byte) (SwapDetails, error) {
	values, err := c.abi.unpackInput("fillOrderRFQ", data)
	if err != nil {
		return SwapDetails{}, err
	}
	order := *abi.ConvertType(values[0], new(aggRFQOrder)).(*aggRFQOrder)
	takingAmount, ok := values[3].(*big.Int)
	if !ok {
		return SwapDetails{}, ErrMalformedCalldata
	}

	amountIn := takingAmount
	if amountIn.Sign() == 0 {
		amountIn = order.TakingAmount
	}

	return SwapDetails{
		TokenIn:  order.TakerAsset,
		TokenOut: order.MakerAsset,
		AmountIn: amountIn,
		// An RFQ fill executes at the order's fixed price; the making
		// amount is the floor the taker accepts.
		MinAmountOut: order.MakingAmount,
		Recipient:    common.Address{},
	}, nil
}
