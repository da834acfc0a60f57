// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"encoding/binary"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// TeleportAdapter sends through the teleport message bus. Teleport ids are
// blake3 digests of the packed request, matching the bus's own scheme.
type TeleportAdapter struct {
	escrow common.Address
}

// NewTeleportAdapter creates the teleport adapter.
func NewTeleportAdapter() *TeleportAdapter {
	return &TeleportAdapter{escrow: escrowAddress("teleport")}
}

func (a *TeleportAdapter) Name() string { return "teleport" }

func (a *TeleportAdapter) Send(ledger Ledger, sender common.Address, req SendRequest) ([32]byte, error) {
	amount, err := debit(ledger, sender, a.escrow, req)
	if err != nil {
		return [32]byte{}, err
	}

	hasher := blake3.New()
	hasher.Write(sender[:])
	var chainBuf [8]byte
	binary.BigEndian.PutUint64(chainBuf[:], req.DstChainID)
	hasher.Write(chainBuf[:])
	hasher.Write(req.Receiver[:])
	hasher.Write(req.Token[:])
	hasher.Write(amount.PaddedBytes(32))
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], req.Nonce)
	hasher.Write(nonceBuf[:])

	var id [32]byte
	copy(id[:], hasher.Sum(nil))
	return id, nil
}
