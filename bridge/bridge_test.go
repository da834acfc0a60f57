// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

var (
	testToken    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testSender   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testReceiver = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

// testLedger is a minimal in-memory ledger for adapter tests.
type testLedger struct {
	balances map[common.Address]map[common.Address]*uint256.Int
}

func newTestLedger() *testLedger {
	return &testLedger{balances: make(map[common.Address]map[common.Address]*uint256.Int)}
}

func (l *testLedger) fund(token, account common.Address, amount int64) {
	if l.balances[token] == nil {
		l.balances[token] = make(map[common.Address]*uint256.Int)
	}
	l.balances[token][account] = uint256.NewInt(uint64(amount))
}

func (l *testLedger) BalanceOf(token, account common.Address) *uint256.Int {
	if b := l.balances[token][account]; b != nil {
		return new(uint256.Int).Set(b)
	}
	return new(uint256.Int)
}

func (l *testLedger) Transfer(token, from, to common.Address, amount *uint256.Int) error {
	bal := l.BalanceOf(token, from)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if l.balances[token] == nil {
		l.balances[token] = make(map[common.Address]*uint256.Int)
	}
	l.balances[token][from] = bal.Sub(bal, amount)
	l.balances[token][to] = new(uint256.Int).Add(l.BalanceOf(token, to), amount)
	return nil
}

func testRequest(amount int64) SendRequest {
	return SendRequest{
		Token:      testToken,
		Amount:     big.NewInt(amount),
		Receiver:   testReceiver,
		DstChainID: 137,
		Nonce:      7,
	}
}

func adapters() []Adapter {
	return []Adapter{
		NewLiquidityAdapter(1),
		NewLockMintAdapter(),
		NewTeleportAdapter(),
	}
}

func TestAdapters_SendMovesFundsToEscrow(t *testing.T) {
	for _, a := range adapters() {
		t.Run(a.Name(), func(t *testing.T) {
			ledger := newTestLedger()
			ledger.fund(testToken, testSender, 1000)

			id, err := a.Send(ledger, testSender, testRequest(400))
			if err != nil {
				t.Fatal(err)
			}
			if id == ([32]byte{}) {
				t.Error("zero transfer id")
			}
			if got := ledger.BalanceOf(testToken, testSender); got.Uint64() != 600 {
				t.Errorf("sender balance: got %d, want 600", got.Uint64())
			}
			escrow := escrowAddress(a.Name())
			if got := ledger.BalanceOf(testToken, escrow); got.Uint64() != 400 {
				t.Errorf("escrow balance: got %d, want 400", got.Uint64())
			}
		})
	}
}

func TestAdapters_Deterministic(t *testing.T) {
	for _, a := range adapters() {
		t.Run(a.Name(), func(t *testing.T) {
			l1, l2 := newTestLedger(), newTestLedger()
			l1.fund(testToken, testSender, 1000)
			l2.fund(testToken, testSender, 1000)

			id1, err := a.Send(l1, testSender, testRequest(400))
			if err != nil {
				t.Fatal(err)
			}
			id2, err := a.Send(l2, testSender, testRequest(400))
			if err != nil {
				t.Fatal(err)
			}
			if id1 != id2 {
				t.Error("same request produced different ids")
			}

			l3 := newTestLedger()
			l3.fund(testToken, testSender, 1000)
			req := testRequest(400)
			req.Nonce++
			id3, err := a.Send(l3, testSender, req)
			if err != nil {
				t.Fatal(err)
			}
			if id3 == id1 {
				t.Error("nonce change did not change the id")
			}
		})
	}
}

func TestAdapters_FailClosed(t *testing.T) {
	for _, a := range adapters() {
		t.Run(a.Name(), func(t *testing.T) {
			ledger := newTestLedger()
			ledger.fund(testToken, testSender, 100)

			if _, err := a.Send(ledger, testSender, testRequest(0)); !errors.Is(err, ErrZeroAmount) {
				t.Errorf("zero amount: got %v", err)
			}
			if _, err := a.Send(ledger, testSender, testRequest(500)); !errors.Is(err, ErrInsufficientBalance) {
				t.Errorf("overdraft: got %v", err)
			}
			// Nothing moved on failure.
			if got := ledger.BalanceOf(testToken, testSender); got.Uint64() != 100 {
				t.Errorf("sender balance after failures: got %d, want 100", got.Uint64())
			}
		})
	}
}

func TestAdapters_NativeFee(t *testing.T) {
	a := NewLiquidityAdapter(1)
	ledger := newTestLedger()
	ledger.fund(testToken, testSender, 1000)

	req := testRequest(400)
	req.NativeFee = big.NewInt(25)

	// Native fee without native balance fails before any transfer.
	if _, err := a.Send(ledger, testSender, req); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("missing native balance: got %v", err)
	}
	if got := ledger.BalanceOf(testToken, testSender); got.Uint64() != 1000 {
		t.Fatalf("token balance after failed send: got %d", got.Uint64())
	}

	ledger.fund(NativeToken, testSender, 30)
	if _, err := a.Send(ledger, testSender, req); err != nil {
		t.Fatal(err)
	}
	if got := ledger.BalanceOf(NativeToken, testSender); got.Uint64() != 5 {
		t.Errorf("native balance: got %d, want 5", got.Uint64())
	}
	escrow := escrowAddress(a.Name())
	if got := ledger.BalanceOf(NativeToken, escrow); got.Uint64() != 25 {
		t.Errorf("escrow native balance: got %d, want 25", got.Uint64())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, a := range adapters() {
		r.Register(a)
	}

	got, err := r.Resolve("teleport")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name() != "teleport" {
		t.Errorf("resolved %q", got.Name())
	}

	if _, err := r.Resolve("nosuch"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}

	names := r.Names()
	want := []string{"liquidity", "lockmint", "teleport"}
	if len(names) != len(want) {
		t.Fatalf("names: %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names: %v", names)
		}
	}
}
