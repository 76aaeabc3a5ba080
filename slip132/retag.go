package slip132

import (
	"errors"
	"fmt"

	"github.com/lightninglabs/segaddr/base58check"
)

const (
	// SerializedKeyLen is the length of a serialized extended key without
	// its checksum.
	SerializedKeyLen = 78

	// EncodedKeyLen is the length of a serialized extended key with the
	// trailing Base58Check checksum.
	EncodedKeyLen = SerializedKeyLen + base58check.ChecksumLen
)

var (
	// ErrWrongVersion is returned when the version prefix of a key doesn't
	// match the version the caller expects.
	ErrWrongVersion = errors.New("unexpected extended key version")

	// ErrUnsupportedKeyType is returned for keys whose version prefix is
	// not one this package can work with.
	ErrUnsupportedKeyType = errors.New("unsupported extended key type")
)

// Retag replaces the version prefix of an 82-byte checksummed key, which must
// currently carry from, with the prefix of to. The checksum is recomputed over
// the new 78-byte body. A fresh buffer is returned and key is left untouched.
func Retag(key []byte, from, to VersionTag) ([]byte, error) {
	if len(key) != EncodedKeyLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d",
			base58check.ErrInvalidLength, len(key), EncodedKeyLen)
	}

	var version VersionBytes
	copy(version[:], key[:4])
	if version != from.Bytes() {
		return nil, fmt.Errorf("%w: got %x, want %v (%x)",
			ErrWrongVersion, version[:], from, from.Bytes())
	}

	body := make([]byte, SerializedKeyLen)
	copy(body, key[:SerializedKeyLen])

	newVersion := to.Bytes()
	copy(body[:4], newVersion[:])

	return base58check.AppendChecksum(body), nil
}

// RetagString decodes a Base58Check encoded key, re-tags it from one version
// to another and encodes the result.
func RetagString(key string, from, to VersionTag) (string, error) {
	payload, err := base58check.DecodeCheck(key, EncodedKeyLen)
	if err != nil {
		return "", err
	}

	retagged, err := Retag(payload, from, to)
	if err != nil {
		return "", err
	}

	return base58check.Encode(retagged), nil
}

// Detect decodes key and returns the version tag it carries.
func Detect(key string) (VersionTag, error) {
	payload, err := base58check.DecodeCheck(key, EncodedKeyLen)
	if err != nil {
		return 0, err
	}

	var version VersionBytes
	copy(version[:], payload[:4])

	return TagFromBytes(version).UnwrapOrErr(fmt.Errorf("%w: unknown "+
		"version %x", ErrUnsupportedKeyType, version[:]))
}

// Convert re-tags key to the version to, whatever known version it currently
// carries. Only the script family may change: converting between networks or
// between public and private versions is refused, since the key material
// would not match the new prefix.
func Convert(key string, to VersionTag) (string, error) {
	from, err := Detect(key)
	if err != nil {
		return "", err
	}

	switch {
	case from.Network() != to.Network():
		return "", fmt.Errorf("%w: cannot convert %v key (%v) to %v "+
			"(%v)", ErrWrongVersion, from, from.Network(), to,
			to.Network())

	case from.IsPrivate() != to.IsPrivate():
		return "", fmt.Errorf("%w: cannot convert between public and "+
			"private versions (%v to %v)", ErrWrongVersion, from, to)
	}

	if from == to {
		return key, nil
	}

	return RetagString(key, from, to)
}
