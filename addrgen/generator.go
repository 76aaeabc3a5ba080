// Package addrgen expands an account level extended public key into an
// ordered list of native segwit receive or change addresses.
package addrgen

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/lightninglabs/segaddr/base58check"
	"github.com/lightninglabs/segaddr/hdkey"
	"github.com/lightninglabs/segaddr/keychain"
	"github.com/lightninglabs/segaddr/lnutils"
	"github.com/lightninglabs/segaddr/segwit"
	"github.com/lightninglabs/segaddr/slip132"
	"golang.org/x/sync/errgroup"
)

// ErrIndexOutOfRange is returned when the requested addresses would reach
// into the hardened index range, which can't be derived from a public key.
var ErrIndexOutOfRange = errors.New("address index out of range")

// Address is a single generated address together with the key it pays to.
type Address struct {
	// Index is the index of the key on its branch.
	Index uint32 `json:"index" yaml:"index"`

	// Path is the derivation path of the key relative to the account.
	Path string `json:"path" yaml:"path"`

	// PubKey is the hex encoded compressed public key.
	PubKey string `json:"pubkey" yaml:"pubkey"`

	// Address is the bech32 encoded P2WPKH address.
	Address string `json:"address" yaml:"address"`
}

// Generator derives addresses from account extended public keys.
type Generator struct {
	cfg Config
}

// New creates a generator with the given config.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Generator{cfg: cfg}, nil
}

// ParseAccountKey decodes an account key and normalizes it to the generic
// BIP-32 version. Public keys carrying the generic version of the configured
// network are taken as they are. Keys carrying the BIP-84 version (zpub or
// vpub) are re-tagged to the generic one first. Anything else, including
// private keys, BIP-49 keys and keys of another network, is refused with
// slip132.ErrUnsupportedKeyType.
//
// The version the key was supplied with is returned alongside the key.
func (g *Generator) ParseAccountKey(keyStr string) (*hdkey.ExtendedKey,
	slip132.VersionTag, error) {

	payload, err := base58check.DecodeCheck(keyStr, slip132.EncodedKeyLen)
	if err != nil {
		return nil, 0, err
	}

	var version slip132.VersionBytes
	copy(version[:], payload[:4])

	tag, err := slip132.TagFromBytes(version).UnwrapOrErr(fmt.Errorf(
		"%w: unknown version %x", slip132.ErrUnsupportedKeyType,
		version[:],
	))
	if err != nil {
		return nil, 0, err
	}

	family, err := slip132.FamilyForParams(g.cfg.NetParams)
	if err != nil {
		return nil, 0, err
	}

	generic := slip132.Lookup(family, slip132.ScriptLegacy, false)
	display := slip132.Lookup(family, slip132.ScriptNativeSegwit, false)

	switch tag {
	// Nothing to do for keys that already carry the generic version.
	case generic:

	case display:
		payload, err = slip132.Retag(payload, display, generic)
		if err != nil {
			return nil, 0, err
		}

	default:
		return nil, 0, fmt.Errorf("%w: %v keys can't be used on %v, "+
			"want %v or %v", slip132.ErrUnsupportedKeyType, tag,
			g.cfg.NetParams.Name, generic, display)
	}

	key, err := hdkey.Parse(payload[:slip132.SerializedKeyLen])
	if err != nil {
		return nil, 0, err
	}

	return key, tag, nil
}

// Generate derives count consecutive addresses of the configured branch,
// starting at the configured index. The result holds exactly count entries in
// index order. The first error aborts the whole batch and no addresses are
// returned.
func (g *Generator) Generate(ctx context.Context, keyStr string,
	count uint32) ([]Address, error) {

	start := g.cfg.StartIndex
	if uint64(start)+uint64(count) > uint64(hdkey.HardenedKeyStart) {
		return nil, fmt.Errorf("%w: %d addresses starting at %d",
			ErrIndexOutOfRange, count, start)
	}

	accountKey, tag, err := g.ParseAccountKey(keyStr)
	if err != nil {
		return nil, err
	}

	log.Tracef("Account key: %v", lnutils.SpewLogClosure(accountKey))
	log.DebugS(ctx, "Generating addresses",
		"version", tag,
		"branch", g.cfg.Branch,
		"start", start,
		"count", count,
		"workers", g.cfg.Workers)

	// Derive the branch key up front, every address is a direct child
	// of it.
	ring := keychain.NewPubKeyRing(accountKey)
	if _, err := ring.BranchKey(g.cfg.Branch); err != nil {
		return nil, err
	}

	addrs := make([]Address, count)
	derive := func(i uint32) error {
		loc := keychain.KeyLocator{
			Branch: g.cfg.Branch,
			Index:  start + i,
		}

		addr, err := g.deriveAddress(ctx, ring, loc)
		if err != nil {
			return err
		}

		addrs[i] = *addr

		return nil
	}

	if g.cfg.Workers <= 1 {
		for i := uint32(0); i < count; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			if err := derive(i); err != nil {
				return nil, err
			}
		}

		return addrs, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for i := uint32(0); i < count; i++ {
		if egCtx.Err() != nil {
			break
		}

		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			return derive(i)
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// The loop may have stopped early because the parent context was
	// canceled while no derivation failed.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return addrs, nil
}

// deriveAddress derives the address found at loc.
func (g *Generator) deriveAddress(ctx context.Context,
	ring *keychain.PubKeyRing, loc keychain.KeyLocator) (*Address, error) {

	key, err := ring.DeriveExtendedKey(loc)
	if err != nil {
		return nil, fmt.Errorf("unable to derive %v: %w", loc, err)
	}

	addr, err := segwit.P2WPKHAddress(key.KeyData, g.cfg.NetParams)
	if err != nil {
		return nil, err
	}

	log.TraceS(ctx, "Derived address", "address", addr, "locator", loc,
		lnutils.LogKeyData("pubkey", key.KeyData))

	return &Address{
		Index:   loc.Index,
		Path:    loc.String(),
		PubKey:  hex.EncodeToString(key.KeyData[:]),
		Address: addr,
	}, nil
}

// GenerateAddresses returns count mainnet receive addresses of an account
// extended public key (xpub or zpub), starting at index zero.
func GenerateAddresses(keyStr string, count uint32) ([]string, error) {
	g, err := New(DefaultConfig())
	if err != nil {
		return nil, err
	}

	addrs, err := g.Generate(context.Background(), keyStr, count)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(addrs))
	for i, addr := range addrs {
		out[i] = addr.Address
	}

	return out, nil
}
