// Package base58check implements the Base58Check encoding used to transport
// serialized extended keys: a Base58 string over a payload whose last four
// bytes are the leading bytes of the double SHA-256 of the rest.
package base58check

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mr-tron/base58"
)

// ChecksumLen is the number of checksum bytes appended to every payload.
const ChecksumLen = 4

var (
	// ErrInvalidEncoding is returned when a string contains characters
	// outside of the Base58 alphabet or is empty.
	ErrInvalidEncoding = errors.New("invalid base58 encoding")

	// ErrInvalidLength is returned when a decoded payload doesn't have the
	// length the caller requires.
	ErrInvalidLength = errors.New("invalid payload length")

	// ErrChecksumMismatch is returned when the trailing checksum of a
	// payload doesn't commit to the bytes that precede it.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Checksum returns the first ChecksumLen bytes of the double SHA-256 of body.
func Checksum(body []byte) [ChecksumLen]byte {
	var sum [ChecksumLen]byte
	copy(sum[:], chainhash.DoubleHashB(body)[:ChecksumLen])

	return sum
}

// Decode decodes a plain Base58 string without interpreting its contents.
func Decode(s string) ([]byte, error) {
	payload, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	return payload, nil
}

// Verify checks that the last ChecksumLen bytes of payload are the checksum
// of the bytes before them.
func Verify(payload []byte) error {
	if len(payload) < ChecksumLen {
		return fmt.Errorf("%w: %d bytes is too short to carry a "+
			"checksum", ErrInvalidLength, len(payload))
	}

	body := payload[:len(payload)-ChecksumLen]
	want := Checksum(body)
	if !bytes.Equal(payload[len(body):], want[:]) {
		return fmt.Errorf("%w: got %x, want %x", ErrChecksumMismatch,
			payload[len(body):], want)
	}

	return nil
}

// DecodeCheck decodes s and returns the full payload, checksum included. The
// payload must be exactly size bytes long. The length is checked before the
// checksum so that a truncated or padded string is always reported as a
// length problem.
func DecodeCheck(s string, size int) ([]byte, error) {
	payload, err := Decode(s)
	if err != nil {
		return nil, err
	}

	if len(payload) != size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d",
			ErrInvalidLength, len(payload), size)
	}

	if err := Verify(payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// AppendChecksum returns a new slice holding body followed by its checksum.
func AppendChecksum(body []byte) []byte {
	sum := Checksum(body)

	payload := make([]byte, 0, len(body)+ChecksumLen)
	payload = append(payload, body...)

	return append(payload, sum[:]...)
}

// EncodeCheck appends a freshly computed checksum to body and encodes the
// result as Base58.
func EncodeCheck(body []byte) string {
	return base58.Encode(AppendChecksum(body))
}

// Encode encodes payload as Base58 as is. The caller is responsible for the
// payload already carrying a valid checksum.
func Encode(payload []byte) string {
	return base58.Encode(payload)
}
