// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
)

var feeKeyPrefix = []byte("fee/")

// FeeLedger persists per-token fee accruals. Only the engine credits it;
// balances are zeroed when the collector withdraws. Balances never go
// negative because take removes the whole entry.
type FeeLedger struct {
	db database.Database
}

// NewFeeLedger creates a fee ledger over the given database.
func NewFeeLedger(db database.Database) *FeeLedger {
	return &FeeLedger{db: db}
}

func feeKey(token common.Address) []byte {
	return append(append([]byte{}, feeKeyPrefix...), token.Bytes()...)
}

// Balance returns the accrued fee balance for a token.
func (f *FeeLedger) Balance(token common.Address) (*big.Int, error) {
	raw, err := f.db.Get(feeKey(token))
	if errors.Is(err, database.ErrNotFound) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fee balance read: %w", err)
	}
	return new(big.Int).SetBytes(raw), nil
}

// Credit adds to a token's accrued balance.
func (f *FeeLedger) Credit(token common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	bal, err := f.Balance(token)
	if err != nil {
		return err
	}
	bal.Add(bal, amount)
	if err := f.db.Put(feeKey(token), bal.Bytes()); err != nil {
		return fmt.Errorf("fee balance write: %w", err)
	}
	return nil
}

// take removes and returns a token's full accrued balance.
func (f *FeeLedger) take(token common.Address) (*big.Int, error) {
	bal, err := f.Balance(token)
	if err != nil {
		return nil, err
	}
	if bal.Sign() == 0 {
		return bal, nil
	}
	if err := f.db.Delete(feeKey(token)); err != nil {
		return nil, fmt.Errorf("fee balance delete: %w", err)
	}
	return bal, nil
}
