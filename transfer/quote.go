// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transfer

import (
	"encoding/binary"
	"math/big"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
)

// QuoteDigest canonicalizes every custody-affecting hop parameter into a
// deterministic byte sequence and hashes it. Altering any one byte of any
// hop invalidates the digest.
func QuoteDigest(steps []ExecutionStep, feeDeadline uint64) common.Hash {
	var data []byte
	data = binary.BigEndian.AppendUint64(data, feeDeadline)
	for _, step := range steps {
		data = binary.BigEndian.AppendUint64(data, step.ChainID)
		data = append(data, step.DstToken.Bytes()...)
		data = append(data, step.DstFallbackToken.Bytes()...)
		data = append(data, padAmount(step.MinAmountOut)...)
		data = append(data, padAmount(step.MinFallbackAmountOut)...)
		data = append(data, padAmount(step.Fee)...)
		data = append(data, padAmount(step.FallbackFee)...)
		data = append(data, padAmount(step.Bridge.NativeFee)...)
	}
	return common.BytesToHash(crypto.Keccak256(data))
}

// VerifyQuote checks the off-chain quote covering a multi-hop transfer.
//
// Single-hop transfers carry a trivial payload and skip signature recovery
// entirely: their fee is fixed rather than quoted, so there is nothing for
// the signer to attest to. Multi-hop transfers must recover to the expected
// signer and be inside the fee deadline.
func VerifyQuote(steps []ExecutionStep, feeDeadline uint64, sig []byte, signer common.Address, now uint64) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}
	if len(steps) == 1 {
		return nil
	}

	if now > feeDeadline {
		return ErrQuoteExpired
	}

	digest := QuoteDigest(steps, feeDeadline)
	if len(sig) != crypto.SignatureLength {
		return ErrInvalidSignature
	}
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return ErrInvalidSignature
	}
	if common.Address(crypto.PubkeyToAddress(*pub)) != signer {
		return ErrInvalidSignature
	}
	return nil
}

// padAmount left-pads an amount to 32 bytes so the canonical encoding stays
// fixed-width. Nil is encoded as zero.
func padAmount(v *big.Int) []byte {
	var buf [32]byte
	if v != nil {
		v.FillBytes(buf[:])
	}
	return buf[:]
}
