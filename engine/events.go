// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/xswap/transfer"
)

// Outcome distinguishes how a destination hop handled its swap.
type Outcome uint8

const (
	SwapSucceeded Outcome = iota
	SwapSkipped
	SwapFailedForwarded
)

func (o Outcome) String() string {
	switch o {
	case SwapSucceeded:
		return "swap_succeeded"
	case SwapSkipped:
		return "swap_skipped"
	case SwapFailedForwarded:
		return "swap_failed_forwarded"
	default:
		return "unknown"
	}
}

// SrcExecuted is emitted when a source hop commits.
type SrcExecuted struct {
	ID               transfer.ID
	DstChainID       uint64
	TokenIn          common.Address
	TokenOut         common.Address
	AmountIn         *big.Int
	AmountOut        *big.Int
	Provider         string
	BridgeTransferID [32]byte
}

// DstExecuted is emitted when a delivered message is processed.
type DstExecuted struct {
	ID                transfer.ID
	Token             common.Address
	Delivered         *big.Int
	FallbackDelivered *big.Int
	Fee               *big.Int
	Outcome           Outcome
}

// PocketFundClaimed is emitted by the manual recovery path.
type PocketFundClaimed struct {
	ID       transfer.ID
	Pocket   common.Address
	Token    common.Address
	Amount   *big.Int
	Receiver common.Address
}

// EventSink receives engine events for external indexers. A nil sink drops
// them.
type EventSink interface {
	OnSrcExecuted(SrcExecuted)
	OnDstExecuted(DstExecuted)
	OnPocketFundClaimed(PocketFundClaimed)
}

func (e *Engine) emitSrc(ev SrcExecuted) {
	if e.sink != nil {
		e.sink.OnSrcExecuted(ev)
	}
}

func (e *Engine) emitDst(ev DstExecuted) {
	if e.sink != nil {
		e.sink.OnDstExecuted(ev)
	}
}

func (e *Engine) emitClaim(ev PocketFundClaimed) {
	if e.sink != nil {
		e.sink.OnPocketFundClaimed(ev)
	}
}
