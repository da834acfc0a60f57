// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"encoding/binary"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
)

// lockMintTag domain-separates lock-and-mint ids from other providers that
// hash similar fields.
var lockMintTag = []byte("lockmint/v1")

// LockMintAdapter locks funds on the source chain; the provider mints a
// wrapped representation on the destination.
type LockMintAdapter struct {
	escrow common.Address
}

// NewLockMintAdapter creates the lock-and-mint adapter.
func NewLockMintAdapter() *LockMintAdapter {
	return &LockMintAdapter{escrow: escrowAddress("lockmint")}
}

func (a *LockMintAdapter) Name() string { return "lockmint" }

func (a *LockMintAdapter) Send(ledger Ledger, sender common.Address, req SendRequest) ([32]byte, error) {
	amount, err := debit(ledger, sender, a.escrow, req)
	if err != nil {
		return [32]byte{}, err
	}

	buf := append([]byte{}, lockMintTag...)
	buf = append(buf, req.Token.Bytes()...)
	buf = append(buf, req.Receiver.Bytes()...)
	buf = append(buf, amount.PaddedBytes(32)...)
	buf = binary.BigEndian.AppendUint64(buf, req.DstChainID)
	buf = binary.BigEndian.AppendUint64(buf, req.Nonce)

	var id [32]byte
	copy(id[:], crypto.Keccak256(buf))
	return id, nil
}
