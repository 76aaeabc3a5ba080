// Package mnemonic wraps BIP-39 mnemonic generation and seed stretching.
package mnemonic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

var (
	// ErrInvalidWordCount is returned when a mnemonic of an unsupported
	// length is requested.
	ErrInvalidWordCount = errors.New("invalid mnemonic word count")

	// ErrInvalidMnemonic is returned when a mnemonic contains unknown
	// words or its checksum doesn't match.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
)

// EntropySource returns bits of fresh entropy. The bit size is always a
// multiple of 32 between 128 and 256.
type EntropySource func(bits int) ([]byte, error)

// DefaultEntropySource draws entropy from the operating system's CSPRNG.
var DefaultEntropySource EntropySource = bip39.NewEntropy

// entropyBits maps the supported word counts to their entropy size.
var entropyBits = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// SupportedWordCounts lists the mnemonic lengths Generate accepts.
var SupportedWordCounts = []int{12, 15, 18, 21, 24}

// Generator produces new mnemonics from an entropy source.
type Generator struct {
	entropy EntropySource
}

// NewGenerator returns a generator drawing from src. A nil source falls back
// to DefaultEntropySource.
func NewGenerator(src EntropySource) *Generator {
	if src == nil {
		src = DefaultEntropySource
	}

	return &Generator{entropy: src}
}

// Generate returns a new mnemonic of the given number of words.
func (g *Generator) Generate(words int) (string, error) {
	bits, ok := entropyBits[words]
	if !ok {
		return "", fmt.Errorf("%w: %d, must be one of %v",
			ErrInvalidWordCount, words, SupportedWordCounts)
	}

	entropy, err := g.entropy(bits)
	if err != nil {
		return "", fmt.Errorf("unable to gather entropy: %w", err)
	}

	if len(entropy)*8 != bits {
		return "", fmt.Errorf("entropy source returned %d bits, "+
			"want %d", len(entropy)*8, bits)
	}

	return FromEntropy(entropy)
}

// Generate returns a new mnemonic of the given number of words using the
// default entropy source.
func Generate(words int) (string, error) {
	return NewGenerator(nil).Generate(words)
}

// FromEntropy encodes entropy of 128 to 256 bits as a mnemonic.
func FromEntropy(entropy []byte) (string, error) {
	m, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("unable to create mnemonic: %w", err)
	}

	return m, nil
}

// Normalize lower-cases the mnemonic and collapses all whitespace between
// words into single spaces. The seed is computed over the exact mnemonic
// string, so user input must be normalized first.
func Normalize(m string) string {
	return strings.Join(strings.Fields(strings.ToLower(m)), " ")
}

// Validate returns ErrInvalidMnemonic if m isn't a valid BIP-39 mnemonic.
func Validate(m string) error {
	m = Normalize(m)

	if _, ok := entropyBits[len(strings.Fields(m))]; !ok {
		return fmt.Errorf("%w: %d words", ErrInvalidMnemonic,
			len(strings.Fields(m)))
	}

	if _, err := bip39.EntropyFromMnemonic(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}

	return nil
}

// ToSeed validates and normalizes m and stretches it with the passphrase into
// the 64-byte BIP-39 seed.
func ToSeed(m, passphrase string) ([]byte, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}

	seed, err := bip39.NewSeedWithErrorChecking(Normalize(m), passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}

	return seed, nil
}
