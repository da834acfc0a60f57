// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

const ammRouterABI = `[{"name":"swapExactTokensForTokens","type":"function","inputs":[
	{"name":"amountIn","type":"uint256"},
	{"name":"amountOutMin","type":"uint256"},
	{"name":"path","type":"address[]"},
	{"name":"to","type":"address"},
	{"name":"deadline","type":"uint256"}]}]`

// AMMCodec handles exact-input swaps on routers that take an explicit token
// list: the first path entry is the input token, the last is the output.
type AMMCodec struct {
	abi extendedABI
}

// NewAMMCodec creates the token-list router codec.
func NewAMMCodec() *AMMCodec {
	return &AMMCodec{abi: parseABI(ammRouterABI)}
}

// Selector returns the function selector this codec decodes.
func (c *AMMCodec) Selector() [4]byte {
	return c.abi.selector("swapExactTokensForTokens")
}

// Decode extracts the uniform swap view from token-list router calldata.
func (c *AMMCodec) Decode(dex common.Address, data []byte) (SwapDetails, error) {
	amountIn, amountOutMin, path, to, _, err := c.unpack(data)
	if err != nil {
		return SwapDetails{}, err
	}

	return SwapDetails{
		TokenIn:      path[0],
		TokenOut:     path[len(path)-1],
		AmountIn:     amountIn,
		MinAmountOut: amountOutMin,
		Recipient:    to,
	}, nil
}

// EncodeAmountIn rewrites the calldata with a corrected input amount.
func (c *AMMCodec) EncodeAmountIn(data []byte, amountIn *big.Int) ([]byte, error) {
	_, amountOutMin, path, to, deadline, err := c.unpack(data)
	if err != nil {
		return nil, err
	}
	return c.abi.packInput("swapExactTokensForTokens", amountIn, amountOutMin, path, to, deadline)
}

func (c *AMMCodec) unpack(data []byte) (*big.Int, *big.Int, []common.Address, common.Address, *big.Int, error) {
	values, err := c.abi.unpackInput("swapExactTokensForTokens", data)
	if err != nil {
		return nil, nil, nil, common.Address{}, nil, err
	}

	amountIn, ok1 := values[0].(*big.Int)
	amountOutMin, ok2 := values[1].(*big.Int)
	path, ok3 := values[2].([]common.Address)
	to, ok4 := values[3].(common.Address)
	deadline, ok5 := values[4].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return nil, nil, nil, common.Address{}, nil, ErrMalformedCalldata
	}
	if len(path) < 2 {
		return nil, nil, nil, common.Address{}, nil, ErrMalformedCalldata
	}
	return amountIn, amountOutMin, path, to, deadline, nil
}
