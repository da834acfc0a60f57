// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transfer

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

// Wire layout of the cross-chain payload. The step tuple is flattened so the
// encoding stays a single ABI tuple array.
var messageArgs abi.Arguments

func init() {
	idType, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		panic(err)
	}
	uint64Type, err := abi.NewType("uint64", "", nil)
	if err != nil {
		panic(err)
	}
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	stepsType, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "chainId", Type: "uint64"},
		{Name: "dex", Type: "address"},
		{Name: "swapData", Type: "bytes"},
		{Name: "provider", Type: "string"},
		{Name: "bridgeParams", Type: "bytes"},
		{Name: "nativeFee", Type: "uint256"},
		{Name: "dstToken", Type: "address"},
		{Name: "dstFallbackToken", Type: "address"},
		{Name: "minAmountOut", Type: "uint256"},
		{Name: "minFallbackAmountOut", Type: "uint256"},
		{Name: "fee", Type: "uint256"},
		{Name: "fallbackFee", Type: "uint256"},
	})
	if err != nil {
		panic(err)
	}
	dstType, err := abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "receiver", Type: "address"},
		{Name: "nativeOut", Type: "bool"},
	})
	if err != nil {
		panic(err)
	}

	messageArgs = abi.Arguments{
		{Name: "id", Type: idType},
		{Name: "nonce", Type: uint64Type},
		{Name: "srcSender", Type: addressType},
		{Name: "srcChainId", Type: uint64Type},
		{Name: "steps", Type: stepsType},
		{Name: "dst", Type: dstType},
	}
}

type wireStep struct {
	ChainId              uint64
	Dex                  common.Address
	SwapData             []byte
	Provider             string
	BridgeParams         []byte
	NativeFee            *big.Int
	DstToken             common.Address
	DstFallbackToken     common.Address
	MinAmountOut         *big.Int
	MinFallbackAmountOut *big.Int
	Fee                  *big.Int
	FallbackFee          *big.Int
}

type wireDst struct {
	Receiver  common.Address
	NativeOut bool
}

// EncodeMessage serializes the payload handed to the relaying network.
func EncodeMessage(msg Message) ([]byte, error) {
	steps := make([]wireStep, len(msg.Steps))
	for i, s := range msg.Steps {
		steps[i] = wireStep{
			ChainId:              s.ChainID,
			Dex:                  s.Swap.Dex,
			SwapData:             s.Swap.Data,
			Provider:             s.Bridge.Provider,
			BridgeParams:         s.Bridge.Params,
			NativeFee:            orZero(s.Bridge.NativeFee),
			DstToken:             s.DstToken,
			DstFallbackToken:     s.DstFallbackToken,
			MinAmountOut:         orZero(s.MinAmountOut),
			MinFallbackAmountOut: orZero(s.MinFallbackAmountOut),
			Fee:                  orZero(s.Fee),
			FallbackFee:          orZero(s.FallbackFee),
		}
	}
	return messageArgs.Pack(
		[32]byte(msg.ID),
		msg.Nonce,
		msg.SrcSender,
		msg.SrcChainID,
		steps,
		wireDst{Receiver: msg.Dst.Receiver, NativeOut: msg.Dst.NativeOut},
	)
}

// DecodeMessage parses a relayed payload. It fails closed on any shape
// mismatch rather than returning a partially decoded message.
func DecodeMessage(data []byte) (Message, error) {
	values, err := messageArgs.Unpack(data)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if len(values) != len(messageArgs) {
		return Message{}, ErrInvalidMessage
	}

	rawID, ok := values[0].([32]byte)
	if !ok {
		return Message{}, ErrInvalidMessage
	}
	nonce, ok := values[1].(uint64)
	if !ok {
		return Message{}, ErrInvalidMessage
	}
	srcSender, ok := values[2].(common.Address)
	if !ok {
		return Message{}, ErrInvalidMessage
	}
	srcChainID, ok := values[3].(uint64)
	if !ok {
		return Message{}, ErrInvalidMessage
	}
	wireSteps := *abi.ConvertType(values[4], new([]wireStep)).(*[]wireStep)
	dst := *abi.ConvertType(values[5], new(wireDst)).(*wireDst)

	steps := make([]ExecutionStep, len(wireSteps))
	for i, s := range wireSteps {
		steps[i] = ExecutionStep{
			ChainID: s.ChainId,
			Swap: SwapDescription{
				Dex:  s.Dex,
				Data: s.SwapData,
			},
			Bridge: BridgeDescription{
				Provider:  s.Provider,
				Params:    s.BridgeParams,
				NativeFee: s.NativeFee,
			},
			DstToken:             s.DstToken,
			DstFallbackToken:     s.DstFallbackToken,
			MinAmountOut:         s.MinAmountOut,
			MinFallbackAmountOut: s.MinFallbackAmountOut,
			Fee:                  s.Fee,
			FallbackFee:          s.FallbackFee,
		}
	}

	return Message{
		ID:         ID(rawID),
		Nonce:      nonce,
		SrcSender:  srcSender,
		SrcChainID: srcChainID,
		Steps:      steps,
		Dst:        DestinationInfo{Receiver: dst.Receiver, NativeOut: dst.NativeOut},
	}, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
