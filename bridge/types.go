// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge holds the provider adapters that move funds off-chain and
// the name registry that selects between them. Providers are configuration:
// adding one never touches the execution engine.
package bridge

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
)

var (
	ErrUnknownProvider     = errors.New("unknown bridge provider")
	ErrZeroAmount          = errors.New("bridge amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance for bridge send")
	ErrAmountOverflow      = errors.New("bridge amount exceeds 256 bits")
)

// Ledger is the slice of the host ledger an adapter needs: enough to move
// the bridged funds into the provider's escrow.
type Ledger interface {
	BalanceOf(token, account common.Address) *uint256.Int
	Transfer(token, from, to common.Address, amount *uint256.Int) error
}

// SendRequest describes one outgoing hop handed to a provider.
type SendRequest struct {
	Token       common.Address
	Amount      *big.Int
	Receiver    common.Address
	DstChainID  uint64
	Nonce       uint64
	MaxSlippage uint32
	// NativeFee is the provider's message fee, paid in the native currency.
	NativeFee *big.Int
}

// Adapter sends funds through one bridge provider and returns the
// provider-native transfer id. That id identifies the hop on the provider's
// own rails; it is unrelated to the transfer id of the overall route.
type Adapter interface {
	Name() string
	Send(ledger Ledger, sender common.Address, req SendRequest) ([32]byte, error)
}

// NativeToken is the zero address, standing in for the chain's native
// currency on the ledger.
var NativeToken = common.Address{}

// escrowAddress derives the deterministic account a provider's funds sit in
// until the off-chain leg settles.
func escrowAddress(provider string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("xswap/escrow/" + provider))[12:])
}

// debit moves the request's token amount, plus any native fee, from the
// sender into the provider escrow. Balance checks fail closed before any
// funds move.
func debit(ledger Ledger, sender, escrow common.Address, req SendRequest) (*uint256.Int, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	amount, overflow := uint256.FromBig(req.Amount)
	if overflow {
		return nil, ErrAmountOverflow
	}
	if ledger.BalanceOf(req.Token, sender).Cmp(amount) < 0 {
		return nil, ErrInsufficientBalance
	}

	var fee *uint256.Int
	if req.NativeFee != nil && req.NativeFee.Sign() > 0 {
		var overflow bool
		fee, overflow = uint256.FromBig(req.NativeFee)
		if overflow {
			return nil, ErrAmountOverflow
		}
		if ledger.BalanceOf(NativeToken, sender).Cmp(fee) < 0 {
			return nil, ErrInsufficientBalance
		}
	}

	if err := ledger.Transfer(req.Token, sender, escrow, amount); err != nil {
		return nil, err
	}
	if fee != nil {
		if err := ledger.Transfer(NativeToken, sender, escrow, fee); err != nil {
			return nil, err
		}
	}
	return amount, nil
}
