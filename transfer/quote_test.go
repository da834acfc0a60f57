// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transfer

import (
	"errors"
	"math/big"
	"testing"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
)

func twoHopSteps() []ExecutionStep {
	return []ExecutionStep{
		{
			ChainID: 1,
			Bridge:  BridgeDescription{Provider: "liquidity", NativeFee: big.NewInt(1e15)},
		},
		{
			ChainID:          2,
			DstToken:         common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
			DstFallbackToken: common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
			MinAmountOut:     big.NewInt(95),
			Fee:              big.NewInt(3),
			FallbackFee:      big.NewInt(4),
		},
	}
}

func TestVerifyQuote_ValidSignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	signer := common.Address(crypto.PubkeyToAddress(key.PublicKey))

	steps := twoHopSteps()
	deadline := uint64(1000)
	digest := QuoteDigest(steps, deadline)
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		t.Fatal(err)
	}

	if err := VerifyQuote(steps, deadline, sig, signer, 999); err != nil {
		t.Fatalf("valid quote rejected: %v", err)
	}
}

func TestVerifyQuote_WrongSigner(t *testing.T) {
	key, _ := crypto.GenerateKey()
	other, _ := crypto.GenerateKey()

	steps := twoHopSteps()
	deadline := uint64(1000)
	digest := QuoteDigest(steps, deadline)
	sig, _ := crypto.Sign(digest.Bytes(), key)

	err := VerifyQuote(steps, deadline, sig, common.Address(crypto.PubkeyToAddress(other.PublicKey)), 999)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyQuote_TamperedStep(t *testing.T) {
	key, _ := crypto.GenerateKey()
	signer := common.Address(crypto.PubkeyToAddress(key.PublicKey))

	steps := twoHopSteps()
	deadline := uint64(1000)
	digest := QuoteDigest(steps, deadline)
	sig, _ := crypto.Sign(digest.Bytes(), key)

	// Raising the quoted fee by one unit must invalidate the signature.
	steps[1].Fee = big.NewInt(4)
	err := VerifyQuote(steps, deadline, sig, signer, 999)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature after tamper, got %v", err)
	}
}

func TestVerifyQuote_Expired(t *testing.T) {
	key, _ := crypto.GenerateKey()
	signer := common.Address(crypto.PubkeyToAddress(key.PublicKey))

	steps := twoHopSteps()
	deadline := uint64(1000)
	digest := QuoteDigest(steps, deadline)
	sig, _ := crypto.Sign(digest.Bytes(), key)

	err := VerifyQuote(steps, deadline, sig, signer, 1001)
	if !errors.Is(err, ErrQuoteExpired) {
		t.Fatalf("expected ErrQuoteExpired, got %v", err)
	}
}

// Single-hop transfers are price-free at this layer: the canonical payload is
// trivial and signature checking is skipped entirely.
func TestVerifyQuote_SingleHopSkipsSignature(t *testing.T) {
	steps := twoHopSteps()[:1]
	if err := VerifyQuote(steps, 0, nil, common.Address{}, 5000); err != nil {
		t.Fatalf("single-hop quote should not require a signature: %v", err)
	}
}

func TestVerifyQuote_NoSteps(t *testing.T) {
	if err := VerifyQuote(nil, 0, nil, common.Address{}, 0); !errors.Is(err, ErrNoSteps) {
		t.Fatalf("expected ErrNoSteps, got %v", err)
	}
}

func TestVerifyQuote_GarbageSignature(t *testing.T) {
	steps := twoHopSteps()
	err := VerifyQuote(steps, 1000, []byte{1, 2, 3}, common.Address{}, 999)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}
