package lncfg

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// MainNet is the name of the bitcoin main network.
	MainNet = "mainnet"

	// TestNet is the name of the bitcoin test network.
	TestNet = "testnet"

	// RegTest is the name of the bitcoin regression test network.
	RegTest = "regtest"

	// SigNet is the name of the default bitcoin signet.
	SigNet = "signet"
)

// Networks lists the names of all networks segaddr can derive addresses for.
var Networks = []string{MainNet, TestNet, RegTest, SigNet}

// ChainParams returns the chain parameters of the network with the given
// name. The btcd names of the networks ("mainnet", "testnet3", "regtest" and
// "signet") are accepted as well as the short forms above.
func ChainParams(network string) (*chaincfg.Params, error) {
	switch NormalizeNetwork(strings.ToLower(network)) {
	case MainNet, "bitcoin":
		return &chaincfg.MainNetParams, nil

	case TestNet:
		return &chaincfg.TestNet3Params, nil

	case RegTest:
		return &chaincfg.RegressionNetParams, nil

	case SigNet:
		return &chaincfg.SigNetParams, nil

	default:
		return nil, fmt.Errorf("unknown network %q, must be one of: %s",
			network, strings.Join(Networks, ", "))
	}
}
