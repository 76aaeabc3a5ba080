// Package slip132 holds the registry of extended key version prefixes and the
// re-tagger that moves an encoded key from one prefix to another.
//
// Wallet software uses the 4-byte version field of a serialized BIP-32 key to
// signal which script type the account is meant for. The key material is the
// same regardless of the prefix, so an account key exported as a zpub (BIP-84,
// native segwit) can be re-tagged as an xpub (generic BIP-32) and fed to any
// BIP-32 implementation, and the other way around.
package slip132

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// VersionBytes is the 4-byte version prefix of a serialized extended key.
type VersionBytes [4]byte

// VersionTag identifies one of the extended key versions known to this
// package. Values of this type are only obtained through the constants below
// or through TagFromBytes.
type VersionTag uint8

const (
	// XPub is the generic BIP-32 mainnet public version, also used by
	// BIP-44 legacy accounts.
	XPub VersionTag = iota

	// YPub is the BIP-49 (nested segwit) mainnet public version.
	YPub

	// ZPub is the BIP-84 (native segwit) mainnet public version.
	ZPub

	// XPrv is the generic BIP-32 mainnet private version.
	XPrv

	// YPrv is the BIP-49 mainnet private version.
	YPrv

	// ZPrv is the BIP-84 mainnet private version.
	ZPrv

	// TPub is the generic BIP-32 public version for the test networks.
	TPub

	// UPub is the BIP-49 public version for the test networks.
	UPub

	// VPub is the BIP-84 public version for the test networks.
	VPub

	// TPrv is the generic BIP-32 private version for the test networks.
	TPrv

	// UPrv is the BIP-49 private version for the test networks.
	UPrv

	// VPrv is the BIP-84 private version for the test networks.
	VPrv

	numVersionTags
)

// ScriptType is the address family an account version is meant for.
type ScriptType uint8

const (
	// ScriptLegacy marks BIP-44 style accounts (P2PKH), which use the
	// generic BIP-32 versions.
	ScriptLegacy ScriptType = iota

	// ScriptNestedSegwit marks BIP-49 accounts (P2SH-P2WPKH).
	ScriptNestedSegwit

	// ScriptNativeSegwit marks BIP-84 accounts (P2WPKH).
	ScriptNativeSegwit
)

// String returns the BIP that defines the script type.
func (s ScriptType) String() string {
	switch s {
	case ScriptLegacy:
		return "bip44"
	case ScriptNestedSegwit:
		return "bip49"
	case ScriptNativeSegwit:
		return "bip84"
	default:
		return "unknown"
	}
}

// NetworkFamily separates mainnet versions from the versions shared by all
// test networks (testnet, regtest, signet, simnet).
type NetworkFamily uint8

const (
	// MainNet is the Bitcoin main network.
	MainNet NetworkFamily = iota

	// TestNets covers every network whose HD key ids are tpub/tprv.
	TestNets
)

// String returns a human readable name of the network family.
func (n NetworkFamily) String() string {
	switch n {
	case MainNet:
		return "mainnet"
	case TestNets:
		return "testnet"
	default:
		return "unknown"
	}
}

// versionInfo is one row of the registry.
type versionInfo struct {
	name    string
	version VersionBytes
	private bool
	script  ScriptType
	network NetworkFamily
}

// registry is indexed by VersionTag. Every declared tag has exactly one row
// and no two rows share a prefix, which the tests assert.
//
//nolint:lll
var registry = [numVersionTags]versionInfo{
	XPub: {"xpub", VersionBytes{0x04, 0x88, 0xb2, 0x1e}, false, ScriptLegacy, MainNet},
	YPub: {"ypub", VersionBytes{0x04, 0x9d, 0x7c, 0xb2}, false, ScriptNestedSegwit, MainNet},
	ZPub: {"zpub", VersionBytes{0x04, 0xb2, 0x47, 0x46}, false, ScriptNativeSegwit, MainNet},
	XPrv: {"xprv", VersionBytes{0x04, 0x88, 0xad, 0xe4}, true, ScriptLegacy, MainNet},
	YPrv: {"yprv", VersionBytes{0x04, 0x9d, 0x78, 0x78}, true, ScriptNestedSegwit, MainNet},
	ZPrv: {"zprv", VersionBytes{0x04, 0xb2, 0x43, 0x0c}, true, ScriptNativeSegwit, MainNet},
	TPub: {"tpub", VersionBytes{0x04, 0x35, 0x87, 0xcf}, false, ScriptLegacy, TestNets},
	UPub: {"upub", VersionBytes{0x04, 0x4a, 0x52, 0x62}, false, ScriptNestedSegwit, TestNets},
	VPub: {"vpub", VersionBytes{0x04, 0x5f, 0x1c, 0xf6}, false, ScriptNativeSegwit, TestNets},
	TPrv: {"tprv", VersionBytes{0x04, 0x35, 0x83, 0x94}, true, ScriptLegacy, TestNets},
	UPrv: {"uprv", VersionBytes{0x04, 0x4a, 0x4e, 0x28}, true, ScriptNestedSegwit, TestNets},
	VPrv: {"vprv", VersionBytes{0x04, 0x5f, 0x18, 0xbc}, true, ScriptNativeSegwit, TestNets},
}

// AllTags returns every known version tag in declaration order.
func AllTags() []VersionTag {
	tags := make([]VersionTag, 0, numVersionTags)
	for tag := VersionTag(0); tag < numVersionTags; tag++ {
		tags = append(tags, tag)
	}

	return tags
}

// Bytes returns the 4-byte version prefix bound to the tag.
func (v VersionTag) Bytes() VersionBytes {
	return registry[v].version
}

// String returns the conventional Base58 prefix of keys with this version,
// e.g. "zpub".
func (v VersionTag) String() string {
	if v >= numVersionTags {
		return fmt.Sprintf("VersionTag(%d)", uint8(v))
	}

	return registry[v].name
}

// IsPrivate returns true if the tag is used for extended private keys.
func (v VersionTag) IsPrivate() bool {
	return registry[v].private
}

// ScriptType returns the address family the version is meant for.
func (v VersionTag) ScriptType() ScriptType {
	return registry[v].script
}

// Network returns the network family the version belongs to.
func (v VersionTag) Network() NetworkFamily {
	return registry[v].network
}

// Generic returns the plain BIP-32 version with the same network family and
// privacy as v. Generic keys are what standard BIP-32 implementations expect.
func (v VersionTag) Generic() VersionTag {
	return lookup(v.Network(), ScriptLegacy, v.IsPrivate())
}

// Public returns the public counterpart of v.
func (v VersionTag) Public() VersionTag {
	return lookup(v.Network(), v.ScriptType(), false)
}

// lookup finds the tag with the given attributes. Every combination of the
// three attributes is covered by the registry.
func lookup(net NetworkFamily, script ScriptType, private bool) VersionTag {
	for tag := VersionTag(0); tag < numVersionTags; tag++ {
		info := registry[tag]
		if info.network == net && info.script == script &&
			info.private == private {

			return tag
		}
	}

	// Unreachable as long as the registry is complete.
	return XPub
}

// Lookup returns the tag for a network family, script type and privacy.
func Lookup(net NetworkFamily, script ScriptType, private bool) VersionTag {
	return lookup(net, script, private)
}

// TagFromBytes returns the tag bound to the given prefix, or None if the
// prefix is not in the registry.
func TagFromBytes(version VersionBytes) fn.Option[VersionTag] {
	for tag := VersionTag(0); tag < numVersionTags; tag++ {
		if registry[tag].version == version {
			return fn.Some(tag)
		}
	}

	return fn.None[VersionTag]()
}

// TagFromName maps a conventional prefix such as "zpub" to its tag.
func TagFromName(name string) (VersionTag, error) {
	for tag := VersionTag(0); tag < numVersionTags; tag++ {
		if registry[tag].name == name {
			return tag, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown version name %q",
		ErrUnsupportedKeyType, name)
}

// FamilyForParams returns the version family that keys for the given chain
// parameters use. The decision is made on the generic public key id the
// parameters declare, so regtest and signet map to the test family.
func FamilyForParams(params *chaincfg.Params) (NetworkFamily, error) {
	switch VersionBytes(params.HDPublicKeyID) {
	case registry[XPub].version:
		return MainNet, nil

	case registry[TPub].version:
		return TestNets, nil

	default:
		return 0, fmt.Errorf("%w: no extended key versions for "+
			"network %v", ErrUnsupportedKeyType, params.Name)
	}
}
