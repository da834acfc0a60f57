// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine drives a transfer through its hops: pull funds on the
// source chain, swap, hand off to a bridge provider, and on the destination
// chain sweep the pocket, take fees, swap and disburse. All fund movement on
// a chain is atomic: any error reverts to the ledger state at entry.
package engine

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/xswap/bridge"
	"github.com/luxfi/xswap/codec"
	"github.com/luxfi/xswap/transfer"
)

var (
	ErrInsufficientNativeValue   = errors.New("native value below required amount")
	ErrSlippageExceeded          = errors.New("swap output below minimum")
	ErrInsufficientPocketBalance = errors.New("pocket balance below quoted minimum")
	ErrUnauthorized              = errors.New("caller not authorized")
	ErrPocketEmpty               = errors.New("pocket holds no balance for token")
	ErrUnknownRouter             = errors.New("no router for dex address")
	ErrAmountOverflow            = errors.New("amount exceeds 256 bits")
	ErrZeroAmount                = errors.New("amount must be positive")
)

// NativeToken is the zero address, standing in for the native currency.
var NativeToken = common.Address{}

// Router executes one swap against a DEX on behalf of from, moving tokenIn
// out of from's balance and crediting the output back. It enforces the
// calldata's minimum output, surfacing ErrSlippageExceeded.
type Router interface {
	Swap(ledger Ledger, from, dex common.Address, data []byte) (*big.Int, error)
}

// Engine is one chain's deployment of the orchestrator.
type Engine struct {
	cfg     Config
	ledger  Ledger
	codecs  *codec.Registry
	bridges *bridge.Registry
	routers map[common.Address]Router
	mu      sync.RWMutex
	fees    *FeeLedger
	sink    EventSink
	log     log.Logger

	// now is stubbed in tests.
	now func() uint64
}

// New creates an engine from a verified configuration.
func New(cfg Config, ledger Ledger, codecs *codec.Registry, bridges *bridge.Registry, fees *FeeLedger, sink EventSink, logger log.Logger) (*Engine, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	ledger.CreateAccount(cfg.Address)
	return &Engine{
		cfg:     cfg,
		ledger:  ledger,
		codecs:  codecs,
		bridges: bridges,
		routers: make(map[common.Address]Router),
		fees:    fees,
		sink:    sink,
		log:     logger,
		now:     func() uint64 { return uint64(time.Now().Unix()) },
	}, nil
}

// RegisterRouter binds a DEX address to the router that executes its swaps.
func (e *Engine) RegisterRouter(dex common.Address, r Router) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.routers[dex] = r
}

// SrcResult reports what a committed source hop did.
type SrcResult struct {
	ID               transfer.ID
	Pocket           common.Address
	TokenOut         common.Address
	AmountOut        *big.Int
	Provider         string
	BridgeTransferID [32]byte
	// Message is the payload for the next hop; empty when the transfer
	// settled on this chain.
	Message []byte
}

// SourceExecute runs the source-side hop: verify the quote, pull amountIn
// from the caller, run the optional swap, then either bridge toward the next
// hop's pocket or pay the receiver directly. The quote is checked before any
// funds move.
func (e *Engine) SourceExecute(caller common.Address, nativeValue *big.Int, desc transfer.Description, steps []transfer.ExecutionStep) (*SrcResult, error) {
	if len(steps) == 0 {
		return nil, transfer.ErrNoSteps
	}
	if desc.AmountIn == nil || desc.AmountIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if err := transfer.VerifyQuote(steps, desc.FeeDeadline, desc.Sig, e.cfg.QuoteSigner, e.now()); err != nil {
		return nil, err
	}

	id := transfer.DeriveID(caller, desc.Receiver, e.cfg.ChainID, desc.Nonce)

	snap := e.ledger.Snapshot()
	res, err := e.sourceExecute(caller, nativeValue, desc, steps, id)
	if err != nil {
		if rerr := e.ledger.RevertToSnapshot(snap); rerr != nil {
			e.log.Error("revert failed", "id", id.Hex(), "err", rerr)
		}
		return nil, err
	}
	return res, nil
}

// DirectSwap is the single-hop, same-chain form: one step, no bridge, funds
// settle straight to the receiver.
func (e *Engine) DirectSwap(caller common.Address, nativeValue *big.Int, desc transfer.Description, step transfer.ExecutionStep) (*SrcResult, error) {
	return e.SourceExecute(caller, nativeValue, desc, []transfer.ExecutionStep{step})
}

func (e *Engine) sourceExecute(caller common.Address, nativeValue *big.Int, desc transfer.Description, steps []transfer.ExecutionStep, id transfer.ID) (*SrcResult, error) {
	tokenIn, err := e.pull(caller, nativeValue, desc)
	if err != nil {
		return nil, err
	}

	step := steps[0]
	tokenOut := tokenIn
	amountOut := new(big.Int).Set(desc.AmountIn)
	if !step.Swap.Empty() {
		tokenOut, amountOut, err = e.runSwap(step.Swap, desc.AmountIn)
		if err != nil {
			return nil, err
		}
	}

	res := &SrcResult{
		ID:        id,
		TokenOut:  tokenOut,
		AmountOut: amountOut,
	}

	if len(steps) == 1 {
		if err := e.payOut(tokenOut, amountOut, desc.Receiver, desc.NativeOut); err != nil {
			return nil, err
		}
		e.log.Info("transfer settled at source", "id", id.Hex(), "receiver", desc.Receiver, "amountOut", amountOut)
		e.emitSrc(SrcExecuted{
			ID:         id,
			DstChainID: e.cfg.ChainID,
			TokenIn:    tokenIn,
			TokenOut:   tokenOut,
			AmountIn:   desc.AmountIn,
			AmountOut:  amountOut,
		})
		return res, nil
	}

	provider := step.Bridge.Provider
	if provider == "" {
		provider = desc.BridgeProvider
	}
	adapter, err := e.bridges.Resolve(provider)
	if err != nil {
		return nil, err
	}

	// A terminal next hop with nothing to do there (no swap, no further
	// bridge, no quoted fee) takes delivery straight at the receiver; the
	// pocket and message machinery buy nothing for it.
	next := steps[1]
	direct := len(steps) == 2 && next.Swap.Empty() && next.Bridge.Empty() &&
		(next.Fee == nil || next.Fee.Sign() == 0)

	recipient := transfer.PocketAddress(id, e.cfg.Address)
	if direct {
		recipient = desc.Receiver
	}
	xferID, err := adapter.Send(e.ledger, e.cfg.Address, bridge.SendRequest{
		Token:       tokenOut,
		Amount:      amountOut,
		Receiver:    recipient,
		DstChainID:  next.ChainID,
		Nonce:       desc.Nonce,
		MaxSlippage: desc.MaxBridgeSlippage,
		NativeFee:   step.Bridge.NativeFee,
	})
	if err != nil {
		return nil, err
	}

	if !direct {
		payload, err := transfer.EncodeMessage(transfer.Message{
			ID:         id,
			Nonce:      desc.Nonce,
			SrcSender:  caller,
			SrcChainID: e.cfg.ChainID,
			Steps:      steps[1:],
			Dst:        transfer.DestinationInfo{Receiver: desc.Receiver, NativeOut: desc.NativeOut},
		})
		if err != nil {
			return nil, fmt.Errorf("encode next-hop message: %w", err)
		}
		res.Pocket = transfer.PocketAddress(id, e.cfg.Address)
		res.Message = payload
	}

	res.Provider = provider
	res.BridgeTransferID = xferID

	e.log.Info("source hop bridged", "id", id.Hex(), "provider", provider,
		"dstChain", steps[1].ChainID, "amountOut", amountOut)
	e.emitSrc(SrcExecuted{
		ID:               id,
		DstChainID:       steps[1].ChainID,
		TokenIn:          tokenIn,
		TokenOut:         tokenOut,
		AmountIn:         desc.AmountIn,
		AmountOut:        amountOut,
		Provider:         provider,
		BridgeTransferID: xferID,
	})
	return res, nil
}

// pull moves amountIn from the caller into engine custody, wrapping native
// value into the wrap token.
func (e *Engine) pull(caller common.Address, nativeValue *big.Int, desc transfer.Description) (common.Address, error) {
	amount, err := toU256(desc.AmountIn)
	if err != nil {
		return common.Address{}, err
	}

	if desc.NativeIn {
		if nativeValue == nil || nativeValue.Cmp(desc.AmountIn) < 0 {
			return common.Address{}, ErrInsufficientNativeValue
		}
		if err := e.ledger.Transfer(NativeToken, caller, e.cfg.Address, amount); err != nil {
			return common.Address{}, err
		}
		if err := e.ledger.Burn(NativeToken, e.cfg.Address, amount); err != nil {
			return common.Address{}, err
		}
		if err := e.ledger.Mint(e.cfg.NativeWrap, e.cfg.Address, amount); err != nil {
			return common.Address{}, err
		}
		return e.cfg.NativeWrap, nil
	}

	if err := e.ledger.Transfer(desc.TokenIn, caller, e.cfg.Address, amount); err != nil {
		return common.Address{}, err
	}
	return desc.TokenIn, nil
}

// runSwap resolves the codec for the calldata, rewrites the input amount if
// the actual amount differs from the encoded one, and hands execution to the
// DEX's router.
func (e *Engine) runSwap(swap transfer.SwapDescription, amountIn *big.Int) (common.Address, *big.Int, error) {
	c, err := e.codecs.Resolve(swap.Data)
	if err != nil {
		return common.Address{}, nil, err
	}
	details, err := c.Decode(swap.Dex, swap.Data)
	if err != nil {
		return common.Address{}, nil, err
	}

	data := swap.Data
	if details.AmountIn == nil || details.AmountIn.Cmp(amountIn) != 0 {
		data, err = c.EncodeAmountIn(swap.Data, amountIn)
		if err != nil {
			return common.Address{}, nil, err
		}
	}

	e.mu.RLock()
	router, ok := e.routers[swap.Dex]
	e.mu.RUnlock()
	if !ok {
		return common.Address{}, nil, ErrUnknownRouter
	}
	amountOut, err := router.Swap(e.ledger, e.cfg.Address, swap.Dex, data)
	if err != nil {
		return common.Address{}, nil, err
	}
	return details.TokenOut, amountOut, nil
}

// payOut disburses from engine custody, unwrapping to native when asked.
// Zero amounts are a no-op.
func (e *Engine) payOut(token common.Address, amount *big.Int, receiver common.Address, nativeOut bool) error {
	if amount.Sign() == 0 {
		return nil
	}
	amt, err := toU256(amount)
	if err != nil {
		return err
	}

	if nativeOut && token == e.cfg.NativeWrap {
		if err := e.ledger.Burn(e.cfg.NativeWrap, e.cfg.Address, amt); err != nil {
			return err
		}
		return e.ledger.Mint(NativeToken, receiver, amt)
	}
	return e.ledger.Transfer(token, e.cfg.Address, receiver, amt)
}

func toU256(v *big.Int) (*uint256.Int, error) {
	if v == nil || v.Sign() < 0 {
		return nil, ErrZeroAmount
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return u, nil
}
