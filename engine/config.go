// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"errors"

	"github.com/luxfi/geth/common"
)

// Config is the engine's deployment identity on one chain. Address must be
// the same on every chain a transfer touches: it is an input to pocket
// derivation, and both ends must derive the same pocket.
type Config struct {
	ChainID      uint64         `json:"chainId"`
	Address      common.Address `json:"address"`
	QuoteSigner  common.Address `json:"quoteSigner"`
	FeeCollector common.Address `json:"feeCollector"`
	MessageBus   common.Address `json:"messageBus"`
	NativeWrap   common.Address `json:"nativeWrap"`
}

// Verify checks the configuration is complete.
func (c *Config) Verify() error {
	switch {
	case c.ChainID == 0:
		return errors.New("config: chain id must be nonzero")
	case c.Address == (common.Address{}):
		return errors.New("config: engine address is required")
	case c.QuoteSigner == (common.Address{}):
		return errors.New("config: quote signer is required")
	case c.FeeCollector == (common.Address{}):
		return errors.New("config: fee collector is required")
	case c.MessageBus == (common.Address{}):
		return errors.New("config: message bus is required")
	case c.NativeWrap == (common.Address{}):
		return errors.New("config: native wrap token is required")
	}
	return nil
}

// Equal reports whether two configurations match.
func (c *Config) Equal(other *Config) bool {
	if other == nil {
		return false
	}
	return *c == *other
}
