// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/xswap/transfer"
)

// ClaimPocketFund is the manual recovery path for funds stranded in a pocket
// outside the normal flow, such as a token the bridge was never expected to
// deliver. The id is derived with the caller as receiver, so only the
// transfer's intended receiver can reach its pocket: anyone else derives a
// different, empty one.
func (e *Engine) ClaimPocketFund(caller, srcSender common.Address, srcChainID, nonce uint64, token common.Address) (*big.Int, error) {
	id := transfer.DeriveID(srcSender, caller, srcChainID, nonce)
	pocket := transfer.PocketAddress(id, e.cfg.Address)

	bal := e.ledger.BalanceOf(token, pocket)
	if bal.IsZero() {
		return nil, ErrPocketEmpty
	}
	if err := e.ledger.Transfer(token, pocket, caller, bal); err != nil {
		return nil, err
	}

	amount := bal.ToBig()
	e.log.Info("pocket fund claimed", "id", id.Hex(), "token", token, "amount", amount, "receiver", caller)
	e.emitClaim(PocketFundClaimed{
		ID:       id,
		Pocket:   pocket,
		Token:    token,
		Amount:   amount,
		Receiver: caller,
	})
	return amount, nil
}

// CollectFees transfers every accrued fee balance for the given tokens to
// the destination and zeroes the ledger entries. Collector-only. The fee
// entry is taken before its funds move so a crash between the two cannot
// pay the same accrual twice; any failure restores both the ledger and the
// taken entries, leaving no partial collection.
func (e *Engine) CollectFees(caller common.Address, tokens []common.Address, to common.Address) error {
	if caller != e.cfg.FeeCollector {
		return ErrUnauthorized
	}

	snap := e.ledger.Snapshot()
	taken := make(map[common.Address]*big.Int, len(tokens))
	for _, token := range tokens {
		bal, err := e.fees.take(token)
		if err != nil {
			return e.abortCollect(snap, taken, err)
		}
		if bal.Sign() == 0 {
			continue
		}
		taken[token] = bal
		amount, err := toU256(bal)
		if err != nil {
			return e.abortCollect(snap, taken, err)
		}
		if err := e.ledger.Transfer(token, e.cfg.Address, to, amount); err != nil {
			return e.abortCollect(snap, taken, err)
		}
		e.log.Info("fees collected", "token", token, "amount", bal, "to", to)
	}
	return nil
}

// abortCollect rolls a failed collection back: ledger state reverts to the
// entry snapshot and every fee entry removed before the failure is
// re-credited.
func (e *Engine) abortCollect(snap int, taken map[common.Address]*big.Int, cause error) error {
	if err := e.ledger.RevertToSnapshot(snap); err != nil {
		e.log.Error("revert failed during fee collection", "err", err)
	}
	for token, amount := range taken {
		if err := e.fees.Credit(token, amount); err != nil {
			e.log.Error("fee re-credit failed", "token", token, "amount", amount, "err", err)
		}
	}
	return cause
}
