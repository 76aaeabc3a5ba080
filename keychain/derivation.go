package keychain

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightninglabs/segaddr/hdkey"
)

const (
	// BIP0084Purpose is the "purpose" value of BIP-84, the derivation
	// scheme for native segwit (P2WPKH) single signature accounts. All
	// keys handed out by this package live below m/84'.
	BIP0084Purpose = 84
)

var (
	// ErrInvalidAccount is returned when an account number falls into the
	// hardened range and can't be hardened once more.
	ErrInvalidAccount = errors.New("invalid account number")

	// ErrInvalidBranch is returned for branches other than the external
	// and internal chain.
	ErrInvalidBranch = errors.New("invalid branch")
)

// KeyScope is the purpose and coin type pair that roots a BIP-43 style
// hierarchy. Accounts are derived directly below it.
//
// The derivation in this package follows BIP-84:
//
//   - m/84'/coinType'/account'/branch/index
type KeyScope struct {
	// Purpose is the purpose of the hierarchy, always BIP0084Purpose for
	// scopes created by this package.
	Purpose uint32

	// Coin is the SLIP-44 coin type of the chain the keys are used on.
	Coin uint32
}

// String returns the absolute path of the scope, e.g. m/84'/0'.
func (k KeyScope) String() string {
	return hdkey.PathFromMaster(hdkey.Path{
		hdkey.Hardened(k.Purpose), hdkey.Hardened(k.Coin),
	})
}

// ScopeForParams returns the BIP-84 scope for the given network.
func ScopeForParams(params *chaincfg.Params) KeyScope {
	return KeyScope{
		Purpose: BIP0084Purpose,
		Coin:    params.HDCoinType,
	}
}

// AccountPath returns the absolute path of an account below scope.
func AccountPath(scope KeyScope, account uint32) (hdkey.Path, error) {
	if account >= hdkey.HardenedKeyStart {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAccount, account)
	}

	return hdkey.Path{
		hdkey.Hardened(scope.Purpose),
		hdkey.Hardened(scope.Coin),
		hdkey.Hardened(account),
	}, nil
}

// Branch is the chain below an account. BIP-44 and its descendants use the
// external chain for receive addresses and the internal chain for change.
type Branch uint32

const (
	// BranchExternal is the chain of addresses handed out to payers.
	BranchExternal Branch = 0

	// BranchInternal is the chain of change addresses.
	BranchInternal Branch = 1
)

// String returns a human readable name of the branch.
func (b Branch) String() string {
	switch b {
	case BranchExternal:
		return "external"
	case BranchInternal:
		return "internal"
	default:
		return fmt.Sprintf("Branch(%d)", uint32(b))
	}
}

// Validate returns ErrInvalidBranch unless b is the external or the internal
// chain.
func (b Branch) Validate() error {
	if b != BranchExternal && b != BranchInternal {
		return fmt.Errorf("%w: %d", ErrInvalidBranch, uint32(b))
	}

	return nil
}

// KeyLocator locates a key below an account: the branch it sits on and its
// index within that branch. Together with the account key it is enough to
// derive the key without any private material.
type KeyLocator struct {
	// Branch is the chain the key belongs to.
	Branch Branch

	// Index is the precise index of the key on its branch.
	Index uint32
}

// Path returns the path of the key relative to its account.
func (k KeyLocator) Path() hdkey.Path {
	return hdkey.Path{hdkey.ChildIndex(k.Branch), hdkey.ChildIndex(k.Index)}
}

// String returns the relative path of the key, e.g. 0/5.
func (k KeyLocator) String() string {
	return k.Path().String()
}
