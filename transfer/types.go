// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transfer

import (
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"
)

// ID uniquely identifies a transfer across every chain it touches.
// It is the join key correlating source-side and destination-side execution.
type ID [32]byte

// Hash returns the id as a common.Hash.
func (id ID) Hash() common.Hash {
	return common.Hash(id)
}

// Hex returns the 0x-prefixed hex encoding of the id.
func (id ID) Hex() string {
	return common.Hash(id).Hex()
}

// SwapDescription points at one DEX call on a single chain. A zero Dex
// address means the hop has no swap.
type SwapDescription struct {
	Dex  common.Address // Router/pool contract to call
	Data []byte         // Opaque calldata, decoded by the matching codec
}

// Empty reports whether the hop carries no swap.
func (s SwapDescription) Empty() bool {
	return s.Dex == (common.Address{})
}

// BridgeDescription selects the provider carrying funds off this chain.
// An empty Provider means the hop is terminal.
type BridgeDescription struct {
	Provider  string   // Registered adapter name
	Params    []byte   // Provider-specific parameters
	NativeFee *big.Int // Native-currency budget paid to the provider
}

// Empty reports whether the hop has no outgoing bridge.
func (b BridgeDescription) Empty() bool {
	return b.Provider == ""
}

// ExecutionStep is one chain's worth of work. Steps[0] of a message always
// describes the chain the message was delivered on: the Dst* fields state
// what the previous hop's bridge should have delivered here, Swap is the
// local swap to run, and Bridge is how funds leave toward the next step.
type ExecutionStep struct {
	ChainID uint64
	Swap    SwapDescription
	Bridge  BridgeDescription

	// Arrival expectations and fee schedule for this chain.
	DstToken             common.Address
	DstFallbackToken     common.Address
	MinAmountOut         *big.Int
	MinFallbackAmountOut *big.Int
	Fee                  *big.Int
	FallbackFee          *big.Int
}

// DestinationInfo names the final beneficiary of a transfer.
type DestinationInfo struct {
	Receiver  common.Address
	NativeOut bool
}

// Description is the top-level request submitted on the source chain.
// FeeDeadline and Sig together form the off-chain quote.
type Description struct {
	AmountIn          *big.Int
	TokenIn           common.Address
	NativeIn          bool
	Nonce             uint64
	BridgeProvider    string
	MaxBridgeSlippage uint32 // Basis points
	Receiver          common.Address
	NativeOut         bool
	FeeDeadline       uint64
	Sig               []byte
}

// Message is the opaque payload relayed from one chain to the next.
// Steps[0] is the hop to execute on the receiving chain.
type Message struct {
	ID         ID
	Nonce      uint64
	SrcSender  common.Address
	SrcChainID uint64
	Steps      []ExecutionStep
	Dst        DestinationInfo
}

var (
	ErrInvalidSignature = errors.New("quote signature does not recover to signer")
	ErrQuoteExpired     = errors.New("quote fee deadline has passed")
	ErrInvalidMessage   = errors.New("malformed transfer message")
	ErrNoSteps          = errors.New("transfer has no execution steps")
)
