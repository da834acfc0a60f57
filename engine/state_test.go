// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

func TestMemLedger_TransferAndBurn(t *testing.T) {
	l := NewMemLedger()
	token := common.HexToAddress("0x0100000000000000000000000000000000000000")
	a := common.HexToAddress("0x0200000000000000000000000000000000000000")
	b := common.HexToAddress("0x0300000000000000000000000000000000000000")

	if err := l.Mint(token, a, uint256.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(token, a, b, uint256.NewInt(40)); err != nil {
		t.Fatal(err)
	}
	if got := l.BalanceOf(token, a).Uint64(); got != 60 {
		t.Errorf("a: %d", got)
	}
	if got := l.BalanceOf(token, b).Uint64(); got != 40 {
		t.Errorf("b: %d", got)
	}

	if err := l.Transfer(token, a, b, uint256.NewInt(100)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overdraft: %v", err)
	}
	if err := l.Burn(token, b, uint256.NewInt(40)); err != nil {
		t.Fatal(err)
	}
	if got := l.BalanceOf(token, b).Uint64(); got != 0 {
		t.Errorf("b after burn: %d", got)
	}
}

func TestMemLedger_Snapshots(t *testing.T) {
	l := NewMemLedger()
	token := common.HexToAddress("0x0100000000000000000000000000000000000000")
	a := common.HexToAddress("0x0200000000000000000000000000000000000000")
	b := common.HexToAddress("0x0300000000000000000000000000000000000000")

	l.Mint(token, a, uint256.NewInt(100))

	outer := l.Snapshot()
	l.Transfer(token, a, b, uint256.NewInt(30))

	inner := l.Snapshot()
	l.Transfer(token, a, b, uint256.NewInt(30))
	if err := l.RevertToSnapshot(inner); err != nil {
		t.Fatal(err)
	}
	if got := l.BalanceOf(token, b).Uint64(); got != 30 {
		t.Errorf("after inner revert: %d", got)
	}

	if err := l.RevertToSnapshot(outer); err != nil {
		t.Fatal(err)
	}
	if got := l.BalanceOf(token, a).Uint64(); got != 100 {
		t.Errorf("after outer revert: %d", got)
	}
	if got := l.BalanceOf(token, b).Uint64(); got != 0 {
		t.Errorf("b after outer revert: %d", got)
	}

	// Reverting discards later snapshot ids.
	if err := l.RevertToSnapshot(inner); !errors.Is(err, ErrBadSnapshot) {
		t.Fatalf("stale snapshot: %v", err)
	}
}
