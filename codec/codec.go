// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"errors"
	"math/big"
	"sync"

	"github.com/luxfi/geth/common"
)

// SwapDetails is the uniform view every codec extracts from one DEX's
// calldata shape.
type SwapDetails struct {
	TokenIn      common.Address
	TokenOut     common.Address
	AmountIn     *big.Int
	MinAmountOut *big.Int
	Recipient    common.Address // Zero means funds return to the caller
}

// Codec decodes and re-encodes one DEX family's swap calldata. Decode must
// be total over well-formed input and fail closed on anything else;
// EncodeAmountIn rewrites the calldata with a corrected input amount, needed
// because the amount released by a bridge may differ from the quoted one.
type Codec interface {
	Decode(dex common.Address, data []byte) (SwapDetails, error)
	EncodeAmountIn(data []byte, amountIn *big.Int) ([]byte, error)
}

var (
	ErrUnknownSelector   = errors.New("no codec registered for selector")
	ErrMalformedCalldata = errors.New("malformed swap calldata")
	ErrMalformedPath     = errors.New("malformed packed swap path")
	ErrUnknownPool       = errors.New("pool not registered with codec")
)

// Registry resolves the codec for a calldata blob from its leading 4-byte
// function selector. Registration is configuration-time state; resolution is
// read-only.
type Registry struct {
	codecs map[[4]byte]Codec
	mu     sync.RWMutex
}

// NewRegistry creates an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[[4]byte]Codec),
	}
}

// Register binds a selector to a codec, replacing any previous binding.
func (r *Registry) Register(selector [4]byte, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[selector] = c
}

// Resolve returns the codec for the selector embedded in data.
func (r *Registry) Resolve(data []byte) (Codec, error) {
	sel, err := Selector(data)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[sel]
	if !ok {
		return nil, ErrUnknownSelector
	}
	return c, nil
}

// Selector extracts the 4-byte function selector from calldata.
func Selector(data []byte) ([4]byte, error) {
	if len(data) < 4 {
		return [4]byte{}, ErrMalformedCalldata
	}
	var sel [4]byte
	copy(sel[:], data[:4])
	return sel, nil
}
