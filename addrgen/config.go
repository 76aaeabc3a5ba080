package addrgen

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightninglabs/segaddr/hdkey"
	"github.com/lightninglabs/segaddr/keychain"
)

// Config houses the parameters of an address generator.
type Config struct {
	// NetParams is the network the addresses are generated for. It picks
	// the bech32 human readable part and the extended key versions that
	// are accepted.
	NetParams *chaincfg.Params

	// Branch is the chain below the account key the addresses are taken
	// from.
	Branch keychain.Branch

	// StartIndex is the index of the first generated address.
	StartIndex uint32

	// Workers is the number of derivations run in parallel. Zero and one
	// both derive sequentially.
	Workers int
}

// DefaultConfig returns a config generating mainnet receive addresses
// starting at index zero.
func DefaultConfig() Config {
	return Config{
		NetParams:  &chaincfg.MainNetParams,
		Branch:     keychain.BranchExternal,
		StartIndex: 0,
		Workers:    1,
	}
}

// Validate checks the config for sanity.
func (c *Config) Validate() error {
	if c.NetParams == nil {
		return errors.New("network parameters must be set")
	}

	if err := c.Branch.Validate(); err != nil {
		return err
	}

	if c.Workers < 0 {
		return fmt.Errorf("invalid number of workers: %d", c.Workers)
	}

	if c.StartIndex >= hdkey.HardenedKeyStart {
		return fmt.Errorf("%w: start index %d", ErrIndexOutOfRange,
			c.StartIndex)
	}

	return nil
}
