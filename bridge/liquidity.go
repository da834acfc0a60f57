// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"encoding/binary"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
)

// LiquidityAdapter sends through a pooled-liquidity provider: funds enter
// the source-side pool and the destination pool pays out. The transfer id
// preimage matches what the provider's off-chain indexers compute, so both
// sides agree on the id without talking to each other.
type LiquidityAdapter struct {
	SrcChainID uint64

	escrow common.Address
}

// NewLiquidityAdapter creates the pooled-liquidity adapter for a source chain.
func NewLiquidityAdapter(srcChainID uint64) *LiquidityAdapter {
	return &LiquidityAdapter{
		SrcChainID: srcChainID,
		escrow:     escrowAddress("liquidity"),
	}
}

func (a *LiquidityAdapter) Name() string { return "liquidity" }

func (a *LiquidityAdapter) Send(ledger Ledger, sender common.Address, req SendRequest) ([32]byte, error) {
	amount, err := debit(ledger, sender, a.escrow, req)
	if err != nil {
		return [32]byte{}, err
	}

	var buf []byte
	buf = append(buf, sender.Bytes()...)
	buf = append(buf, req.Receiver.Bytes()...)
	buf = append(buf, req.Token.Bytes()...)
	buf = append(buf, amount.PaddedBytes(32)...)
	buf = binary.BigEndian.AppendUint64(buf, req.DstChainID)
	buf = binary.BigEndian.AppendUint64(buf, req.Nonce)
	buf = binary.BigEndian.AppendUint64(buf, a.SrcChainID)

	var id [32]byte
	copy(id[:], crypto.Keccak256(buf))
	return id, nil
}
