// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/xswap/bridge"
	"github.com/luxfi/xswap/transfer"
)

// DstResult reports how a delivered message was settled.
type DstResult struct {
	ID                transfer.ID
	Token             common.Address
	Delivered         *big.Int
	FallbackDelivered *big.Int
	Fee               *big.Int
	Outcome           Outcome
	Provider          string
	BridgeTransferID  [32]byte
	// Message is the payload for the next hop when this hop is not terminal.
	Message []byte
}

// ExecuteMessage processes one delivered transfer message: sweep the pocket,
// take the quoted fee, run the optional destination swap, then disburse to
// the receiver or re-dispatch toward the next hop. Only the configured
// message bus may call it. A re-delivery after the pocket was fully swept is
// a no-op: the sweep finds a zero balance and no further funds move. A
// message arriving before its funds settles the same way; ClaimPocketFund
// recovers anything that lands later.
func (e *Engine) ExecuteMessage(caller common.Address, srcAmount *big.Int, payload []byte, fallbackToken common.Address) (*DstResult, error) {
	if caller != e.cfg.MessageBus {
		return nil, ErrUnauthorized
	}

	msg, err := transfer.DecodeMessage(payload)
	if err != nil {
		return nil, err
	}
	if len(msg.Steps) == 0 {
		return nil, transfer.ErrNoSteps
	}
	if transfer.DeriveID(msg.SrcSender, msg.Dst.Receiver, msg.SrcChainID, msg.Nonce) != msg.ID {
		return nil, fmt.Errorf("%w: id does not match derivation", transfer.ErrInvalidMessage)
	}

	step := msg.Steps[0]
	pocket := transfer.PocketAddress(msg.ID, e.cfg.Address)

	// Read what actually arrived. The bridged amount may differ from
	// srcAmount because of bridge-side slippage and fees.
	token := step.DstToken
	minOut, fee := step.MinAmountOut, step.Fee
	swept := e.ledger.BalanceOf(token, pocket)
	var fallback bool
	if swept.IsZero() {
		fb := fallbackToken
		if fb == (common.Address{}) {
			fb = step.DstFallbackToken
		}
		if fb != (common.Address{}) {
			if fbBal := e.ledger.BalanceOf(fb, pocket); !fbBal.IsZero() {
				token, swept, fallback = fb, fbBal, true
				minOut, fee = step.MinFallbackAmountOut, step.FallbackFee
			}
		}
	}

	if swept.IsZero() {
		// An empty pocket means the first sweep already ran, or the message
		// outran the bridged funds. The two are indistinguishable without
		// per-transfer durable state; both settle as a no-op, and funds that
		// land afterward stay reachable through the claim path.
		e.log.Debug("empty pocket on delivery", "id", msg.ID.Hex(), "srcAmount", srcAmount)
		return &DstResult{
			ID:                msg.ID,
			Token:             token,
			Delivered:         new(big.Int),
			FallbackDelivered: new(big.Int),
			Fee:               new(big.Int),
			Outcome:           SwapSkipped,
		}, nil
	}

	sweptBig := swept.ToBig()
	if minOut != nil && sweptBig.Cmp(minOut) < 0 {
		// Short delivery strands the funds for manual claim; forwarding a
		// short amount would silently cheat the receiver.
		return nil, ErrInsufficientPocketBalance
	}

	snap := e.ledger.Snapshot()
	res, err := e.settleMessage(msg, step, pocket, token, sweptBig, fee, fallback)
	if err != nil {
		if rerr := e.ledger.RevertToSnapshot(snap); rerr != nil {
			e.log.Error("revert failed", "id", msg.ID.Hex(), "err", rerr)
		}
		return nil, err
	}
	return res, nil
}

func (e *Engine) settleMessage(msg transfer.Message, step transfer.ExecutionStep, pocket, token common.Address, sweptBig *big.Int, fee *big.Int, fallback bool) (*DstResult, error) {
	swept, err := toU256(sweptBig)
	if err != nil {
		return nil, err
	}
	if err := e.ledger.Transfer(token, pocket, e.cfg.Address, swept); err != nil {
		return nil, err
	}

	// Swept at or below the fee: retain everything, forward zero. Policy,
	// not an error.
	feeTaken := new(big.Int)
	if fee != nil {
		feeTaken.Set(fee)
	}
	if feeTaken.Cmp(sweptBig) > 0 {
		feeTaken.Set(sweptBig)
	}
	remaining := new(big.Int).Sub(sweptBig, feeTaken)

	outcome := SwapSkipped
	outToken, outAmount := token, remaining
	if remaining.Sign() > 0 && !step.Swap.Empty() {
		inner := e.ledger.Snapshot()
		swapToken, swapOut, err := e.runSwap(step.Swap, remaining)
		if err != nil {
			// The funds are already on this chain; forward them raw rather
			// than stranding them in the pocket.
			if rerr := e.ledger.RevertToSnapshot(inner); rerr != nil {
				return nil, rerr
			}
			outcome = SwapFailedForwarded
			e.log.Warn("destination swap failed, forwarding raw",
				"id", msg.ID.Hex(), "dex", step.Swap.Dex, "err", err)
		} else {
			outToken, outAmount = swapToken, swapOut
			outcome = SwapSucceeded
		}
	}

	res := &DstResult{
		ID:                msg.ID,
		Token:             token,
		Delivered:         new(big.Int),
		FallbackDelivered: new(big.Int),
		Fee:               feeTaken,
		Outcome:           outcome,
	}
	if fallback {
		res.FallbackDelivered.Set(outAmount)
	} else {
		res.Delivered.Set(outAmount)
	}

	if len(msg.Steps) > 1 && outAmount.Sign() > 0 {
		adapter, err := e.bridges.Resolve(step.Bridge.Provider)
		if err != nil {
			return nil, err
		}
		xferID, err := adapter.Send(e.ledger, e.cfg.Address, bridge.SendRequest{
			Token:      outToken,
			Amount:     outAmount,
			Receiver:   pocket,
			DstChainID: msg.Steps[1].ChainID,
			Nonce:      msg.Nonce,
			NativeFee:  step.Bridge.NativeFee,
		})
		if err != nil {
			return nil, err
		}
		next := msg
		next.Steps = msg.Steps[1:]
		payload, err := transfer.EncodeMessage(next)
		if err != nil {
			return nil, fmt.Errorf("encode next-hop message: %w", err)
		}
		res.Provider = step.Bridge.Provider
		res.BridgeTransferID = xferID
		res.Message = payload
		e.log.Info("hop forwarded", "id", msg.ID.Hex(), "provider", step.Bridge.Provider,
			"dstChain", msg.Steps[1].ChainID, "amount", outAmount, "fee", feeTaken)
	} else {
		if err := e.payOut(outToken, outAmount, msg.Dst.Receiver, msg.Dst.NativeOut); err != nil {
			return nil, err
		}
		e.log.Info("transfer settled", "id", msg.ID.Hex(), "receiver", msg.Dst.Receiver,
			"amount", outAmount, "fee", feeTaken, "outcome", outcome.String())
	}

	// The fee database sits outside the ledger snapshot, so the credit must
	// come after every fallible step: an earlier write would survive the
	// revert and double-credit on the retried delivery.
	if err := e.fees.Credit(token, feeTaken); err != nil {
		return nil, err
	}

	e.emitDst(DstExecuted{
		ID:                msg.ID,
		Token:             token,
		Delivered:         res.Delivered,
		FallbackDelivered: res.FallbackDelivered,
		Fee:               feeTaken,
		Outcome:           outcome,
	})
	return res, nil
}
