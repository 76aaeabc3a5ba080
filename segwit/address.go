// Package segwit encodes compressed public keys as native segwit version 0
// pay-to-witness-pubkey-hash (P2WPKH) addresses.
package segwit

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

// WitnessProgramLen is the length of a version 0 P2WPKH witness program.
const WitnessProgramLen = ripemd160.Size

// WitnessProgram returns RIPEMD160(SHA256(pub)), the 20-byte witness program
// committing to a compressed public key.
func WitnessProgram(pub []byte) []byte {
	h := ripemd160.New()
	_, _ = h.Write(chainhash.HashB(pub))

	return h.Sum(nil)
}

// P2WPKHAddress encodes the witness program of pub as a bech32 address using
// the human readable part of the given network (bc, tb, bcrt, ...).
func P2WPKHAddress(pub [btcec.PubKeyBytesLenCompressed]byte,
	params *chaincfg.Params) (string, error) {

	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		WitnessProgram(pub[:]), params,
	)
	if err != nil {
		return "", fmt.Errorf("unable to create p2wpkh address: %w", err)
	}

	return addr.EncodeAddress(), nil
}

// AddressFromPubKey is a convenience wrapper around P2WPKHAddress for parsed
// public keys.
func AddressFromPubKey(pub *btcec.PublicKey,
	params *chaincfg.Params) (string, error) {

	var compressed [btcec.PubKeyBytesLenCompressed]byte
	copy(compressed[:], pub.SerializeCompressed())

	return P2WPKHAddress(compressed, params)
}
