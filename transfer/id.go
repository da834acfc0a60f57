// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transfer

import (
	"encoding/binary"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
)

// PocketCodeHash is the hash of the pocket account's init code. It is fixed
// for every deployment so that the id -> pocket mapping stays a pure
// bijection any party can compute offline.
var PocketCodeHash = common.BytesToHash(crypto.Keccak256([]byte("xswap/pocket/v1")))

// DeriveID computes the transfer id from the custody-defining request fields.
// The packing is fixed-width so independent implementations on both ends of
// a transfer produce bit-identical ids.
func DeriveID(sender, receiver common.Address, srcChainID, nonce uint64) ID {
	data := make([]byte, 0, 56)
	data = append(data, sender.Bytes()...)
	data = append(data, receiver.Bytes()...)
	data = binary.BigEndian.AppendUint64(data, srcChainID)
	data = binary.BigEndian.AppendUint64(data, nonce)

	var id ID
	copy(id[:], crypto.Keccak256(data))
	return id
}

// PocketAddress derives the deterministic escrow address for a transfer,
// using the content-addressed scheme: hash(0xff, engine, salt=id, codeHash).
// The pocket need not exist before funds are sent to it.
func PocketAddress(id ID, engine common.Address) common.Address {
	data := make([]byte, 0, 85)
	data = append(data, 0xff)
	data = append(data, engine.Bytes()...)
	data = append(data, id[:]...)
	data = append(data, PocketCodeHash.Bytes()...)
	return common.BytesToAddress(crypto.Keccak256(data)[12:])
}
