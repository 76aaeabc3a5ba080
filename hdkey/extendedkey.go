// Package hdkey implements public-only BIP-32 hierarchical derivation over
// serialized extended public keys.
//
// Only the non-hardened child derivation function CKDpub is supported, which
// is all that is needed to expand an account level extended public key into
// receive and change addresses. Hardened derivation requires the private key
// and is refused with ErrHardenedDerivation.
package hdkey

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightninglabs/segaddr/base58check"
)

const (
	// SerializedLen is the length of a serialized extended key without
	// the Base58Check checksum.
	SerializedLen = 78

	// EncodedLen is the length of the checksummed payload that is carried
	// in the Base58 string of an extended key.
	EncodedLen = SerializedLen + base58check.ChecksumLen

	// ChainCodeLen is the length of the chain code of an extended key.
	ChainCodeLen = 32

	// KeyDataLen is the length of the key data field, which for public
	// keys holds a compressed secp256k1 point.
	KeyDataLen = btcec.PubKeyBytesLenCompressed

	// MaxDepth is the deepest level a key can sit at, since the depth is
	// serialized as a single byte.
	MaxDepth = 255
)

var (
	// ErrHardenedDerivation is returned when a hardened child is requested
	// from a public key.
	ErrHardenedDerivation = errors.New("cannot derive a hardened key " +
		"from a public key")

	// ErrInvalidChild is returned in the astronomically unlikely case that
	// the tweak for a child index is not a valid scalar, or that the child
	// point is the point at infinity. The caller should skip the index.
	ErrInvalidChild = errors.New("the extended key at this index is " +
		"invalid")

	// ErrInvalidPubKey is returned when the key data of an extended key is
	// not a valid compressed point on the curve.
	ErrInvalidPubKey = errors.New("invalid public key data")

	// ErrDeriveBeyondMaxDepth is returned when a child would sit deeper
	// than MaxDepth.
	ErrDeriveBeyondMaxDepth = errors.New("cannot derive a key with " +
		"more than 255 indices in its path")
)

// ExtendedKey is a BIP-32 extended public key split into its serialized
// fields.
type ExtendedKey struct {
	// Version is the 4-byte version prefix. It is carried along unchanged
	// to every derived child.
	Version [4]byte

	// Depth is the number of derivation steps from the master key.
	Depth uint8

	// ParentFP is the fingerprint of the parent key, all zero for a
	// master key.
	ParentFP [4]byte

	// ChildNum is the index this key was derived at from its parent.
	ChildNum uint32

	// ChainCode is the extra entropy mixed into every child derivation.
	ChainCode [ChainCodeLen]byte

	// KeyData is the compressed public key.
	KeyData [KeyDataLen]byte
}

// Parse decodes a 78-byte serialized extended public key. The key data must be
// a valid compressed point. A private key (key data starting with a zero
// byte) is reported as ErrInvalidPubKey.
func Parse(b []byte) (*ExtendedKey, error) {
	if len(b) != SerializedLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d",
			base58check.ErrInvalidLength, len(b), SerializedLen)
	}

	var k ExtendedKey
	copy(k.Version[:], b[0:4])
	k.Depth = b[4]
	copy(k.ParentFP[:], b[5:9])
	k.ChildNum = binary.BigEndian.Uint32(b[9:13])
	copy(k.ChainCode[:], b[13:45])
	copy(k.KeyData[:], b[45:78])

	if _, err := k.PubKey(); err != nil {
		return nil, err
	}

	return &k, nil
}

// FromString decodes a Base58Check encoded extended public key. The length
// guard runs before the checksum verification.
func FromString(s string) (*ExtendedKey, error) {
	payload, err := base58check.DecodeCheck(s, EncodedLen)
	if err != nil {
		return nil, err
	}

	return Parse(payload[:SerializedLen])
}

// Serialize returns the 78-byte serialization of the key, without checksum.
func (k *ExtendedKey) Serialize() []byte {
	b := make([]byte, 0, SerializedLen)
	b = append(b, k.Version[:]...)
	b = append(b, k.Depth)
	b = append(b, k.ParentFP[:]...)
	b = binary.BigEndian.AppendUint32(b, k.ChildNum)
	b = append(b, k.ChainCode[:]...)

	return append(b, k.KeyData[:]...)
}

// String returns the Base58Check encoding of the key.
func (k *ExtendedKey) String() string {
	return base58check.EncodeCheck(k.Serialize())
}

// PubKey parses the key data into a public key.
func (k *ExtendedKey) PubKey() (*btcec.PublicKey, error) {
	if k.KeyData[0] != 0x02 && k.KeyData[0] != 0x03 {
		return nil, fmt.Errorf("%w: unexpected prefix byte %#x",
			ErrInvalidPubKey, k.KeyData[0])
	}

	pub, err := btcec.ParsePubKey(k.KeyData[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}

	return pub, nil
}

// Fingerprint returns the first four bytes of the hash160 of the key data,
// which children of this key record as their parent fingerprint.
func (k *ExtendedKey) Fingerprint() [4]byte {
	var fp [4]byte
	copy(fp[:], btcutil.Hash160(k.KeyData[:])[:4])

	return fp
}

// IsMaster returns true if the key sits at depth zero.
func (k *ExtendedKey) IsMaster() bool {
	return k.Depth == 0
}

// Copy returns a deep copy of the key.
func (k *ExtendedKey) Copy() *ExtendedKey {
	c := *k
	return &c
}

// Equal returns true if both keys serialize to the same bytes.
func (k *ExtendedKey) Equal(o *ExtendedKey) bool {
	return bytes.Equal(k.Serialize(), o.Serialize())
}

// Child derives the non-hardened child at index i following CKDpub:
//
//	I = HMAC-SHA512(Key = c_par, Data = ser_P(K_par) || ser_32(i))
//	K_i = K_par + I_L*G
//	c_i = I_R
func (k *ExtendedKey) Child(i ChildIndex) (*ExtendedKey, error) {
	if i.IsHardened() {
		return nil, fmt.Errorf("%w: index %v", ErrHardenedDerivation, i)
	}

	if k.Depth == MaxDepth {
		return nil, ErrDeriveBeyondMaxDepth
	}

	parentKey, err := k.PubKey()
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, KeyDataLen+4)
	data = append(data, k.KeyData[:]...)
	data = binary.BigEndian.AppendUint32(data, uint32(i))

	mac := hmac.New(sha512.New, k.ChainCode[:])
	_, _ = mac.Write(data)
	ilr := mac.Sum(nil)
	il, ir := ilr[:32], ilr[32:]

	// I_L must be a valid scalar below the group order.
	var tweak btcec.ModNScalar
	if overflow := tweak.SetByteSlice(il); overflow {
		return nil, fmt.Errorf("%w: tweak overflows the curve order "+
			"at index %v", ErrInvalidChild, i)
	}

	var (
		parentJacobian btcec.JacobianPoint
		tweakJacobian  btcec.JacobianPoint
		childJacobian  btcec.JacobianPoint
	)
	btcec.ScalarBaseMultNonConst(&tweak, &tweakJacobian)
	parentKey.AsJacobian(&parentJacobian)
	btcec.AddNonConst(&parentJacobian, &tweakJacobian, &childJacobian)

	if (childJacobian.X.IsZero() && childJacobian.Y.IsZero()) ||
		childJacobian.Z.IsZero() {

		return nil, fmt.Errorf("%w: child is the point at infinity "+
			"at index %v", ErrInvalidChild, i)
	}

	childJacobian.ToAffine()
	childKey := btcec.NewPublicKey(&childJacobian.X, &childJacobian.Y)

	child := &ExtendedKey{
		Version:  k.Version,
		Depth:    k.Depth + 1,
		ParentFP: k.Fingerprint(),
		ChildNum: uint32(i),
	}
	copy(child.ChainCode[:], ir)
	copy(child.KeyData[:], childKey.SerializeCompressed())

	return child, nil
}

// DerivePublic walks path from parent, one non-hardened child at a time. An
// empty path yields a copy of parent. The first failing step aborts the walk.
func DerivePublic(parent *ExtendedKey, path Path) (*ExtendedKey, error) {
	key := parent.Copy()
	for _, idx := range path {
		child, err := key.Child(idx)
		if err != nil {
			return nil, fmt.Errorf("unable to derive %v of %v: %w",
				idx, path, err)
		}

		key = child
	}

	return key, nil
}
