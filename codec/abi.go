// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"strings"

	"github.com/luxfi/geth/accounts/abi"
)

// extendedABI wraps the standard ABI with calldata-oriented helpers. Codecs
// parse their ABI once at construction; a malformed definition is a
// programming error, so parsing panics.
type extendedABI struct {
	abi.ABI
}

// parseABI parses the raw ABI JSON and returns an extendedABI.
func parseABI(rawABI string) extendedABI {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return extendedABI{ABI: parsed}
}

// selector returns the 4-byte method id for a method name.
func (e extendedABI) selector(name string) [4]byte {
	method, exist := e.Methods[name]
	if !exist {
		panic(fmt.Sprintf("method '%s' not found", name))
	}
	var sel [4]byte
	copy(sel[:], method.ID)
	return sel
}

// unpackInput unpacks full calldata (method id included) for the named
// method, checking that the selector actually matches.
func (e extendedABI) unpackInput(name string, data []byte) ([]interface{}, error) {
	method, exist := e.Methods[name]
	if !exist {
		return nil, fmt.Errorf("method '%s' not found", name)
	}
	if len(data) < 4 || string(data[:4]) != string(method.ID) {
		return nil, ErrMalformedCalldata
	}
	args := data[4:]
	if len(args)%32 != 0 {
		return nil, ErrMalformedCalldata
	}
	values, err := method.Inputs.Unpack(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCalldata, err)
	}
	return values, nil
}

// packInput packs args as full calldata for the named method, method id
// included.
func (e extendedABI) packInput(name string, args ...interface{}) ([]byte, error) {
	packed, err := e.Pack(name, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", name, err)
	}
	return packed, nil
}
