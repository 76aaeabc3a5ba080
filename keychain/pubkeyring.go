package keychain

import (
	"fmt"
	"sync"

	"github.com/lightninglabs/segaddr/hdkey"
)

// PubKeyRing derives the keys of a single account from nothing but its
// extended public key. The branch keys are derived once and cached, so
// deriving many keys of the same branch costs one child derivation each.
//
// PubKeyRing is safe for concurrent use.
type PubKeyRing struct {
	account *hdkey.ExtendedKey

	mu       sync.Mutex
	branches map[Branch]*hdkey.ExtendedKey
}

// NewPubKeyRing returns a key ring for the given account extended public key.
func NewPubKeyRing(account *hdkey.ExtendedKey) *PubKeyRing {
	return &PubKeyRing{
		account:  account,
		branches: make(map[Branch]*hdkey.ExtendedKey),
	}
}

// BranchKey returns the extended public key of the branch, deriving it on
// first use.
func (r *PubKeyRing) BranchKey(branch Branch) (*hdkey.ExtendedKey, error) {
	if err := branch.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if key, ok := r.branches[branch]; ok {
		return key, nil
	}

	key, err := r.account.Child(hdkey.ChildIndex(branch))
	if err != nil {
		return nil, fmt.Errorf("unable to derive %v branch: %w",
			branch, err)
	}

	log.Tracef("Derived %v branch key %v", branch, key)

	r.branches[branch] = key

	return key, nil
}

// DeriveExtendedKey derives the extended public key found at keyLoc.
func (r *PubKeyRing) DeriveExtendedKey(
	keyLoc KeyLocator) (*hdkey.ExtendedKey, error) {

	branchKey, err := r.BranchKey(keyLoc.Branch)
	if err != nil {
		return nil, err
	}

	return branchKey.Child(hdkey.ChildIndex(keyLoc.Index))
}
