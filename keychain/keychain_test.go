package keychain

import (
	"encoding/hex"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightninglabs/segaddr/hdkey"
	"github.com/lightninglabs/segaddr/mnemonic"
	"github.com/lightninglabs/segaddr/slip132"
	"github.com/stretchr/testify/require"
)

const (
	abandonMnemonic = "abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon abandon about"

	// bip84AccountZpub is m/84'/0'/0' of abandonMnemonic.
	bip84AccountZpub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"

	// bip84FirstPubKey is m/84'/0'/0'/0/0 of abandonMnemonic.
	bip84FirstPubKey = "0330d54fd0dd420a6e5f8d3624f5f3482cae350f79d5f0753bf5beef9c2d91af3c"

	// abandonFingerprint is the master key fingerprint of
	// abandonMnemonic.
	abandonFingerprint = "73c5da0a"
)

func abandonSeed(t *testing.T) []byte {
	t.Helper()

	seed, err := mnemonic.ToSeed(abandonMnemonic, "")
	require.NoError(t, err)

	return seed
}

// TestDeriveAccountBIP84Vector derives the account key of the published BIP-84
// test vector.
func TestDeriveAccountBIP84Vector(t *testing.T) {
	t.Parallel()

	account, err := DeriveAccount(
		abandonSeed(t), &chaincfg.MainNetParams, 0,
	)
	require.NoError(t, err)

	require.Equal(t, bip84AccountZpub, account.String())
	display, err := account.DisplayString()
	require.NoError(t, err)
	require.Equal(t, bip84AccountZpub, display)
	require.Equal(t, slip132.XPub, account.Generic)
	require.Equal(t, slip132.ZPub, account.Display)
	require.Equal(t, "xpub", account.GenericString()[:4])
	require.Equal(
		t, abandonFingerprint,
		hex.EncodeToString(account.MasterFingerprint[:]),
	)
	require.Equal(t, "m/84'/0'/0'", hdkey.PathFromMaster(account.Path()))
	require.EqualValues(t, 3, account.Key.Depth)
	require.Equal(t, uint32(hdkey.Hardened(0)), account.Key.ChildNum)

	generic, err := slip132.RetagString(
		bip84AccountZpub, slip132.ZPub, slip132.XPub,
	)
	require.NoError(t, err)
	require.Equal(t, generic, account.GenericString())
	require.Equal(
		t, "[73c5da0a/84'/0'/0']"+generic, account.Descriptor(),
	)
}

// TestDeriveAccountTestnet makes sure test networks use their own coin type
// and the vpub/tpub versions.
func TestDeriveAccountTestnet(t *testing.T) {
	t.Parallel()

	for _, params := range []*chaincfg.Params{
		&chaincfg.TestNet3Params, &chaincfg.RegressionNetParams,
		&chaincfg.SigNetParams,
	} {
		account, err := DeriveAccount(abandonSeed(t), params, 1)
		require.NoError(t, err, params.Name)

		require.Equal(t, slip132.TPub, account.Generic)
		require.Equal(t, slip132.VPub, account.Display)
		require.Equal(t, "vpub", account.String()[:4])
		require.Equal(t, "tpub", account.GenericString()[:4])
		require.Equal(
			t, "m/84'/1'/1'", hdkey.PathFromMaster(account.Path()),
		)
	}

	// Mainnet and testnet accounts don't share keys.
	mainAccount, err := DeriveAccount(
		abandonSeed(t), &chaincfg.MainNetParams, 0,
	)
	require.NoError(t, err)
	testAccount, err := DeriveAccount(
		abandonSeed(t), &chaincfg.TestNet3Params, 0,
	)
	require.NoError(t, err)
	require.NotEqual(t, mainAccount.Key.KeyData, testAccount.Key.KeyData)
}

func TestDeriveAccountInvalid(t *testing.T) {
	t.Parallel()

	_, err := DeriveAccount(
		abandonSeed(t), &chaincfg.MainNetParams, hdkey.HardenedKeyStart,
	)
	require.ErrorIs(t, err, ErrInvalidAccount)

	_, err = DeriveAccount(
		make([]byte, 8), &chaincfg.MainNetParams, 0,
	)
	require.Error(t, err)
}

// TestAccountKeyDisplayString makes sure an account key that no longer
// carries its generic version reports an error instead of a display key.
func TestAccountKeyDisplayString(t *testing.T) {
	t.Parallel()

	account, err := DeriveAccount(
		abandonSeed(t), &chaincfg.MainNetParams, 0,
	)
	require.NoError(t, err)

	account.Generic = slip132.YPub

	_, err = account.DisplayString()
	require.ErrorIs(t, err, slip132.ErrWrongVersion)

	// String falls back to the generic encoding.
	require.Equal(t, account.GenericString(), account.String())
}

// TestPubKeyRing derives keys through the public key ring and compares them
// with a plain path derivation from the account key.
func TestPubKeyRing(t *testing.T) {
	t.Parallel()

	account, err := DeriveAccount(
		abandonSeed(t), &chaincfg.MainNetParams, 0,
	)
	require.NoError(t, err)

	ring := NewPubKeyRing(account.Key)

	first, err := ring.DeriveExtendedKey(KeyLocator{})
	require.NoError(t, err)
	require.Equal(t, bip84FirstPubKey, hex.EncodeToString(first.KeyData[:]))

	for _, loc := range []KeyLocator{
		{Branch: BranchExternal, Index: 1},
		{Branch: BranchInternal, Index: 0},
		{Branch: BranchInternal, Index: 42},
	} {
		key, err := ring.DeriveExtendedKey(loc)
		require.NoError(t, err)

		want, err := hdkey.DerivePublic(account.Key, loc.Path())
		require.NoError(t, err)
		require.True(t, want.Equal(key), loc.String())
	}

	_, err = ring.DeriveExtendedKey(KeyLocator{Branch: 2})
	require.ErrorIs(t, err, ErrInvalidBranch)

	_, err = ring.DeriveExtendedKey(
		KeyLocator{Index: hdkey.HardenedKeyStart},
	)
	require.ErrorIs(t, err, hdkey.ErrHardenedDerivation)
}

// TestPubKeyRingConcurrent makes sure concurrent callers share a single
// cached branch key and derive the same keys as a sequential caller.
func TestPubKeyRingConcurrent(t *testing.T) {
	t.Parallel()

	account, err := DeriveAccount(
		abandonSeed(t), &chaincfg.MainNetParams, 0,
	)
	require.NoError(t, err)

	ring := NewPubKeyRing(account.Key)

	const numKeys = 20
	var (
		wg   sync.WaitGroup
		keys = make([]*hdkey.ExtendedKey, numKeys)
		errs = make([]error, numKeys)
	)
	for i := 0; i < numKeys; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			keys[i], errs[i] = ring.DeriveExtendedKey(KeyLocator{
				Branch: BranchInternal,
				Index:  uint32(i),
			})
		}()
	}
	wg.Wait()

	branchKey, err := ring.BranchKey(BranchInternal)
	require.NoError(t, err)

	for i := 0; i < numKeys; i++ {
		require.NoError(t, errs[i])

		want, err := branchKey.Child(hdkey.ChildIndex(i))
		require.NoError(t, err)
		require.True(t, want.Equal(keys[i]))
	}

	again, err := ring.BranchKey(BranchInternal)
	require.NoError(t, err)
	require.Same(t, branchKey, again)
}

func TestKeyScope(t *testing.T) {
	t.Parallel()

	scope := ScopeForParams(&chaincfg.MainNetParams)
	require.Equal(t, KeyScope{Purpose: 84, Coin: 0}, scope)
	require.Equal(t, "m/84'/0'", scope.String())

	require.Equal(t, "0/5", KeyLocator{Index: 5}.String())
	require.Equal(t, "internal", BranchInternal.String())
	require.Error(t, Branch(7).Validate())
}
