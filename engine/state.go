// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

var (
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrBalanceOverflow     = errors.New("token balance overflow")
	ErrBadSnapshot         = errors.New("unknown snapshot id")
)

// Ledger is the slice of the host ledger the engine drives. The native
// currency is addressed as the zero token. Snapshots give the engine the
// host's atomic-transaction semantics: any failure path reverts to the
// snapshot taken at entry, so no partial fund movement survives an error.
type Ledger interface {
	BalanceOf(token, account common.Address) *uint256.Int
	Transfer(token, from, to common.Address, amount *uint256.Int) error
	Mint(token, to common.Address, amount *uint256.Int) error
	Burn(token, from common.Address, amount *uint256.Int) error
	Exist(account common.Address) bool
	CreateAccount(account common.Address)

	Snapshot() int
	RevertToSnapshot(id int) error
}

// MemLedger is an in-memory Ledger. It backs single-process deployments and
// tests; production embeds the engine behind the host chain's state database
// instead.
type MemLedger struct {
	balances  map[common.Address]map[common.Address]*uint256.Int
	accounts  map[common.Address]struct{}
	snapshots []memSnapshot
}

type memSnapshot struct {
	balances map[common.Address]map[common.Address]*uint256.Int
	accounts map[common.Address]struct{}
}

// NewMemLedger creates an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{
		balances: make(map[common.Address]map[common.Address]*uint256.Int),
		accounts: make(map[common.Address]struct{}),
	}
}

func (l *MemLedger) BalanceOf(token, account common.Address) *uint256.Int {
	if b := l.balances[token][account]; b != nil {
		return new(uint256.Int).Set(b)
	}
	return new(uint256.Int)
}

func (l *MemLedger) set(token, account common.Address, amount *uint256.Int) {
	if l.balances[token] == nil {
		l.balances[token] = make(map[common.Address]*uint256.Int)
	}
	l.balances[token][account] = new(uint256.Int).Set(amount)
	l.accounts[account] = struct{}{}
}

func (l *MemLedger) Transfer(token, from, to common.Address, amount *uint256.Int) error {
	bal := l.BalanceOf(token, from)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.set(token, from, bal.Sub(bal, amount))

	toBal := l.BalanceOf(token, to)
	if _, overflow := toBal.AddOverflow(toBal, amount); overflow {
		return ErrBalanceOverflow
	}
	l.set(token, to, toBal)
	return nil
}

func (l *MemLedger) Mint(token, to common.Address, amount *uint256.Int) error {
	bal := l.BalanceOf(token, to)
	if _, overflow := bal.AddOverflow(bal, amount); overflow {
		return ErrBalanceOverflow
	}
	l.set(token, to, bal)
	return nil
}

func (l *MemLedger) Burn(token, from common.Address, amount *uint256.Int) error {
	bal := l.BalanceOf(token, from)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.set(token, from, bal.Sub(bal, amount))
	return nil
}

func (l *MemLedger) Exist(account common.Address) bool {
	_, ok := l.accounts[account]
	return ok
}

func (l *MemLedger) CreateAccount(account common.Address) {
	l.accounts[account] = struct{}{}
}

// Snapshot records the full ledger state and returns a handle for
// RevertToSnapshot. Snapshots nest; reverting to an earlier one discards
// later ones.
func (l *MemLedger) Snapshot() int {
	snap := memSnapshot{
		balances: make(map[common.Address]map[common.Address]*uint256.Int, len(l.balances)),
		accounts: make(map[common.Address]struct{}, len(l.accounts)),
	}
	for token, accts := range l.balances {
		inner := make(map[common.Address]*uint256.Int, len(accts))
		for acct, bal := range accts {
			inner[acct] = new(uint256.Int).Set(bal)
		}
		snap.balances[token] = inner
	}
	for acct := range l.accounts {
		snap.accounts[acct] = struct{}{}
	}
	l.snapshots = append(l.snapshots, snap)
	return len(l.snapshots) - 1
}

func (l *MemLedger) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(l.snapshots) {
		return ErrBadSnapshot
	}
	snap := l.snapshots[id]
	l.balances = snap.balances
	l.accounts = snap.accounts
	l.snapshots = l.snapshots[:id]
	return nil
}
