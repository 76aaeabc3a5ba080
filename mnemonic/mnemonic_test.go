package mnemonic

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	// abandonMnemonic is the mnemonic of 128 bits of zero entropy.
	abandonMnemonic = "abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon abandon about"

	// abandonTrezorSeed is the seed of abandonMnemonic with the
	// passphrase "TREZOR", the first published BIP-39 vector.
	abandonTrezorSeed = "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3" +
		"e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4a" +
		"b7c81b2f001698e7463b04"
)

func TestFromEntropyVector(t *testing.T) {
	t.Parallel()

	m, err := FromEntropy(make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, abandonMnemonic, m)

	seed, err := ToSeed(m, "TREZOR")
	require.NoError(t, err)
	require.Equal(t, abandonTrezorSeed, hex.EncodeToString(seed))
}

// TestToSeedNormalizes makes sure sloppy user input stretches to the same seed
// as the canonical mnemonic.
func TestToSeedNormalizes(t *testing.T) {
	t.Parallel()

	sloppy := "  ABANDON abandon\tabandon abandon abandon abandon\n" +
		"abandon abandon abandon abandon   abandon About "

	seed, err := ToSeed(sloppy, "TREZOR")
	require.NoError(t, err)
	require.Equal(t, abandonTrezorSeed, hex.EncodeToString(seed))
	require.Equal(t, abandonMnemonic, Normalize(sloppy))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mnemonic string
		valid    bool
	}{
		{
			name:     "valid",
			mnemonic: abandonMnemonic,
			valid:    true,
		},
		{
			name: "bad checksum",
			mnemonic: strings.Repeat("abandon ", 11) +
				"abandon",
		},
		{
			name: "unknown word",
			mnemonic: strings.Repeat("abandon ", 11) +
				"satoshi",
		},
		{
			name:     "wrong word count",
			mnemonic: "abandon abandon about",
		},
		{
			name: "empty",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(test.mnemonic)
			if test.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidMnemonic)

			_, err = ToSeed(test.mnemonic, "")
			require.ErrorIs(t, err, ErrInvalidMnemonic)
		})
	}
}

// TestGenerateWordCounts draws mnemonics of every supported length and checks
// they validate.
func TestGenerateWordCounts(t *testing.T) {
	t.Parallel()

	for _, words := range SupportedWordCounts {
		m, err := Generate(words)
		require.NoError(t, err)
		require.Len(t, strings.Fields(m), words)
		require.NoError(t, Validate(m))
	}

	for _, words := range []int{0, 11, 13, 25} {
		_, err := Generate(words)
		require.ErrorIs(t, err, ErrInvalidWordCount)
	}
}

// TestGeneratorEntropySource checks that the generator only uses the injected
// entropy source and reports its failures.
func TestGeneratorEntropySource(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SampledFrom(SupportedWordCounts).Draw(t, "words")
		entropy := rapid.SliceOfN(
			rapid.Byte(), entropyBits[words]/8, entropyBits[words]/8,
		).Draw(t, "entropy")

		var requested int
		g := NewGenerator(func(bits int) ([]byte, error) {
			requested = bits
			return entropy, nil
		})

		m, err := g.Generate(words)
		require.NoError(t, err)
		require.Equal(t, entropyBits[words], requested)

		want, err := FromEntropy(entropy)
		require.NoError(t, err)
		require.Equal(t, want, m)
	})

	errNoEntropy := errors.New("no entropy")
	g := NewGenerator(func(int) ([]byte, error) {
		return nil, errNoEntropy
	})
	_, err := g.Generate(12)
	require.ErrorIs(t, err, errNoEntropy)

	short := NewGenerator(func(int) ([]byte, error) {
		return make([]byte, 4), nil
	})
	_, err = short.Generate(12)
	require.Error(t, err)
}
