package keychain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightninglabs/segaddr/hdkey"
	"github.com/lightninglabs/segaddr/lnutils"
	"github.com/lightninglabs/segaddr/slip132"
)

// AccountKey is the extended public key of a BIP-84 account along with the
// information needed to describe where it came from.
type AccountKey struct {
	// Scope is the purpose and coin type the account was derived under.
	Scope KeyScope

	// Account is the (unhardened) account number.
	Account uint32

	// MasterFingerprint is the fingerprint of the master public key, as
	// used in output descriptors and PSBTs.
	MasterFingerprint [4]byte

	// Key is the account extended public key carrying the generic BIP-32
	// version (xpub or tpub).
	Key *hdkey.ExtendedKey

	// Generic is the version tag carried by Key.
	Generic slip132.VersionTag

	// Display is the BIP-84 version wallets use when exporting the key
	// (zpub or vpub).
	Display slip132.VersionTag
}

// Path returns the absolute derivation path of the account.
func (a *AccountKey) Path() hdkey.Path {
	// The account number was validated on construction.
	path, _ := AccountPath(a.Scope, a.Account)
	return path
}

// GenericString returns the account key encoded with its generic version.
func (a *AccountKey) GenericString() string {
	return a.Key.String()
}

// DisplayString returns the account key encoded with its display version.
// An error is only returned if Key no longer carries the Generic version.
func (a *AccountKey) DisplayString() (string, error) {
	display, err := slip132.RetagString(
		a.Key.String(), a.Generic, a.Display,
	)
	if err != nil {
		return "", fmt.Errorf("unable to encode account key as %v: %w",
			a.Display, err)
	}

	return display, nil
}

// String returns the account key encoded with its display version, falling
// back to the generic encoding if the key cannot be re-tagged.
func (a *AccountKey) String() string {
	display, err := a.DisplayString()
	if err != nil {
		log.Warnf("Showing generic account key: %v", err)
		return a.GenericString()
	}

	return display
}

// Descriptor returns the key origin expression of the account key, e.g.
// [73c5da0a/84'/0'/0']xpub....
func (a *AccountKey) Descriptor() string {
	return fmt.Sprintf("[%x/%v]%v", a.MasterFingerprint[:], a.Path(),
		a.GenericString())
}

// DeriveAccount derives the extended public key of a BIP-84 account from a
// BIP-39 seed. The hardened steps down to the account level need the private
// key and are carried out by hdkeychain. Only the neutered account key leaves
// this function.
func DeriveAccount(seed []byte, params *chaincfg.Params,
	account uint32) (*AccountKey, error) {

	scope := ScopeForParams(params)
	path, err := AccountPath(scope, account)
	if err != nil {
		return nil, err
	}

	family, err := slip132.FamilyForParams(params)
	if err != nil {
		return nil, err
	}

	master, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("unable to create master key: %w", err)
	}

	masterPub, err := master.Neuter()
	if err != nil {
		return nil, err
	}
	masterKey, err := hdkey.FromString(masterPub.String())
	if err != nil {
		return nil, err
	}

	log.Debugf("Deriving account %v for scope %v",
		hdkey.PathFromMaster(path), scope)

	key := master
	for _, idx := range path {
		key, err = key.Derive(uint32(idx))
		if err != nil {
			return nil, fmt.Errorf("unable to derive %v: %w",
				idx, err)
		}
	}

	accountPub, err := key.Neuter()
	if err != nil {
		return nil, err
	}

	accountKey, err := hdkey.FromString(accountPub.String())
	if err != nil {
		return nil, err
	}

	generic := slip132.Lookup(family, slip132.ScriptLegacy, false)
	display := slip132.Lookup(family, slip132.ScriptNativeSegwit, false)

	acct := &AccountKey{
		Scope:             scope,
		Account:           account,
		MasterFingerprint: masterKey.Fingerprint(),
		Key:               accountKey,
		Generic:           generic,
		Display:           display,
	}

	log.Tracef("Derived account key: %v", lnutils.SpewLogClosure(acct))

	return acct, nil
}
