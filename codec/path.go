// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"math/big"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

const pathRouterABI = `[{"name":"exactInput","type":"function","inputs":[
	{"name":"params","type":"tuple","components":[
		{"name":"path","type":"bytes"},
		{"name":"recipient","type":"address"},
		{"name":"deadline","type":"uint256"},
		{"name":"amountIn","type":"uint256"},
		{"name":"amountOutMinimum","type":"uint256"}]}]}]`

// Packed path layout: token (20 bytes), then one or more (fee 3 bytes,
// token 20 bytes) hops.
const (
	pathAddrLen = 20
	pathHopLen  = 23
)

type exactInputParams struct {
	Path             []byte
	Recipient        common.Address
	Deadline         *big.Int
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

// PathCodec handles routers whose route is a packed byte sequence of
// alternating token and fee fields. The path is checked for well-formedness
// before any field is trusted.
type PathCodec struct {
	abi extendedABI
}

// NewPathCodec creates the packed-path router codec.
func NewPathCodec() *PathCodec {
	return &PathCodec{abi: parseABI(pathRouterABI)}
}

// Selector returns the function selector this codec decodes.
func (c *PathCodec) Selector() [4]byte {
	return c.abi.selector("exactInput")
}

// Decode extracts the uniform swap view from packed-path calldata, rejecting
// malformed paths instead of decoding garbage.
func (c *PathCodec) Decode(dex common.Address, data []byte) (SwapDetails, error) {
	params, err := c.unpack(data)
	if err != nil {
		return SwapDetails{}, err
	}
	if err := checkPath(params.Path); err != nil {
		return SwapDetails{}, err
	}

	return SwapDetails{
		TokenIn:      common.BytesToAddress(params.Path[:pathAddrLen]),
		TokenOut:     common.BytesToAddress(params.Path[len(params.Path)-pathAddrLen:]),
		AmountIn:     params.AmountIn,
		MinAmountOut: params.AmountOutMinimum,
		Recipient:    params.Recipient,
	}, nil
}

// EncodeAmountIn rewrites the calldata with a corrected input amount.
func (c *PathCodec) EncodeAmountIn(data []byte, amountIn *big.Int) ([]byte, error) {
	params, err := c.unpack(data)
	if err != nil {
		return nil, err
	}
	if err := checkPath(params.Path); err != nil {
		return nil, err
	}
	params.AmountIn = amountIn
	return c.abi.packInput("exactInput", params)
}

func (c *PathCodec) unpack(data []byte) (exactInputParams, error) {
	values, err := c.abi.unpackInput("exactInput", data)
	if err != nil {
		return exactInputParams{}, err
	}
	params := *abi.ConvertType(values[0], new(exactInputParams)).(*exactInputParams)
	return params, nil
}

// checkPath enforces the packed layout: at least one hop, and a whole number
// of (fee, token) pairs after the leading token.
func checkPath(path []byte) error {
	if len(path) < pathAddrLen+pathHopLen {
		return ErrMalformedPath
	}
	if (len(path)-pathAddrLen)%pathHopLen != 0 {
		return ErrMalformedPath
	}
	return nil
}
