package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightninglabs/segaddr/addrgen"
	"github.com/lightninglabs/segaddr/hdkey"
	"github.com/lightninglabs/segaddr/mnemonic"
	"github.com/lightninglabs/segaddr/slip132"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon abandon about"

	testAccountZpub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wA" +
		"cvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGut" +
		"ZYs"

	testReceive0 = "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"
	testReceive1 = "bc1qnjg0jd8228aq7egyzacy8cys3knf9xvrerkf9g"
	testChange0  = "bc1q8c6fshw2dlwun7ekn9qwf37cu2rn755upcp6el"

	vector1Master = "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8Nq" +
		"twybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMc" +
		"et8"
)

// runCLI runs the command line with the given arguments and input. The
// segaddr directory is a fresh temporary one unless dir is set. The commands
// swap the package loggers, so tests using this helper don't run in
// parallel.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string,
	error) {

	t.Helper()

	if dir == "" {
		dir = t.TempDir()
	}

	var out, errOut bytes.Buffer
	app := newApp(&cliIO{
		in:         bufio.NewReader(strings.NewReader(stdin)),
		out:        &out,
		errOut:     &errOut,
		isTerminal: func() bool { return false },
	})

	args = append([]string{"segaddr", "--segaddrdir", dir}, args...)
	err := app.Run(args)

	return out.String(), err
}

func outputLines(out string) []string {
	return strings.Split(strings.TrimSpace(out), "\n")
}

// TestGenPub derives the BIP-84 account key of the published test vector.
func TestGenPub(t *testing.T) {
	out, err := runCLI(t, "", testMnemonic+"\n", "genpub")
	require.NoError(t, err)

	lines := outputLines(out)
	require.Len(t, lines, 2)
	require.Equal(t, testAccountZpub, lines[0])
	require.True(t, strings.HasPrefix(lines[1], "xpub"))

	// The generic key converts back into the display key.
	zpub, err := slip132.Convert(lines[1], slip132.ZPub)
	require.NoError(t, err)
	require.Equal(t, testAccountZpub, zpub)

	out, err = runCLI(
		t, "", "  "+strings.ToUpper(testMnemonic)+"  ",
		"--format", "json", "genpub",
	)
	require.NoError(t, err)

	var res accountResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "mainnet", res.Network)
	require.Equal(t, "m/84'/0'/0'", res.Path)
	require.Equal(t, "73c5da0a", res.MasterFingerprint)
	require.Equal(t, testAccountZpub, res.Key)
	require.Equal(t, "[73c5da0a/84'/0'/0']"+lines[1], res.Descriptor)

	// Testnet accounts are exported as vpub.
	out, err = runCLI(
		t, "", testMnemonic+"\n", "--network", "testnet", "genpub",
		"--account", "1",
	)
	require.NoError(t, err)
	lines = outputLines(out)
	require.True(t, strings.HasPrefix(lines[0], "vpub"))
	require.True(t, strings.HasPrefix(lines[1], "tpub"))

	// A passphrase changes the account key.
	out, err = runCLI(
		t, "", testMnemonic+"\nTREZOR\n", "genpub", "--passphrase",
	)
	require.NoError(t, err)
	require.NotEqual(t, testAccountZpub, outputLines(out)[0])

	_, err = runCLI(t, "", "abandon abandon abandon\n", "genpub")
	require.ErrorIs(t, err, mnemonic.ErrInvalidMnemonic)

	_, err = runCLI(t, "", "", "genpub")
	require.ErrorContains(t, err, "unable to read input")
}

// TestGenAddress generates the addresses of the published test vector in all
// output formats.
func TestGenAddress(t *testing.T) {
	out, err := runCLI(
		t, "", "", "genaddress", "--count", "2", testAccountZpub,
	)
	require.NoError(t, err)
	require.Equal(t, []string{testReceive0, testReceive1}, outputLines(out))

	out, err = runCLI(
		t, "", "", "genaddress", "--count", "1", "--change",
		"--workers", "4", testAccountZpub,
	)
	require.NoError(t, err)
	require.Equal(t, []string{testChange0}, outputLines(out))

	// The key is read from the input if it's not an argument.
	out, err = runCLI(
		t, "", testAccountZpub+"\n", "genaddress", "--count", "1",
		"--start", "1",
	)
	require.NoError(t, err)
	require.Equal(t, []string{testReceive1}, outputLines(out))

	out, err = runCLI(
		t, "", "", "--format", "yaml", "genaddress", "--count", "2",
		testAccountZpub,
	)
	require.NoError(t, err)

	var addrs []addrgen.Address
	require.NoError(t, yaml.Unmarshal([]byte(out), &addrs))
	require.Len(t, addrs, 2)
	require.Equal(t, testReceive1, addrs[1].Address)
	require.Equal(t, "0/1", addrs[1].Path)

	out, err = runCLI(
		t, "", "", "--format", "table", "genaddress", "--count", "2",
		testAccountZpub,
	)
	require.NoError(t, err)
	require.Contains(t, out, "ADDRESS")
	require.Contains(t, out, testReceive0)
	require.Contains(t, out, testReceive1)

	// Keys of another network are refused.
	_, err = runCLI(
		t, "", "", "--network", "testnet", "genaddress",
		testAccountZpub,
	)
	require.ErrorIs(t, err, slip132.ErrUnsupportedKeyType)

	_, err = runCLI(
		t, "", "", "genaddress", testAccountZpub, testAccountZpub,
	)
	require.ErrorContains(t, err, "too many arguments")

	_, err = runCLI(
		t, "", "", "genaddress", "--count", "4294967296",
		testAccountZpub,
	)
	require.ErrorContains(t, err, "count out of range")
}

// TestConfigFile makes sure options of the config file are used and
// overridden by flags.
func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(
		filepath.Join(dir, "segaddr.conf"),
		[]byte("[Application Options]\nformat=json\ncount=1\n"), 0600,
	)
	require.NoError(t, err)

	out, err := runCLI(t, dir, "", "genaddress", testAccountZpub)
	require.NoError(t, err)

	var addrs []addrgen.Address
	require.NoError(t, json.Unmarshal([]byte(out), &addrs))
	require.Len(t, addrs, 1)
	require.Equal(t, testReceive0, addrs[0].Address)

	out, err = runCLI(
		t, dir, "", "--format", "plain", "genaddress", "--count", "2",
		testAccountZpub,
	)
	require.NoError(t, err)
	require.Equal(t, []string{testReceive0, testReceive1}, outputLines(out))

	_, err = runCLI(t, "", "", "--format", "xml", "genwords")
	require.ErrorContains(t, err, "invalid output format")

	_, err = runCLI(t, "", "", "--network", "simnet", "genwords")
	require.ErrorContains(t, err, "unknown network")

	_, err = runCLI(t, "", "", "--debuglevel", "AGEN=loud", "genwords")
	require.ErrorContains(t, err, "invalid")
}

// TestGenWords checks that fresh mnemonics of all lengths are valid.
func TestGenWords(t *testing.T) {
	for _, words := range mnemonic.SupportedWordCounts {
		out, err := runCLI(
			t, "", "", "genwords", "--words", strconv.Itoa(words),
		)
		require.NoError(t, err)

		m := strings.TrimSpace(out)
		require.NoError(t, mnemonic.Validate(m))
		require.Len(t, strings.Fields(m), words)
	}

	out, err := runCLI(t, "", "", "--format", "table", "genwords")
	require.NoError(t, err)
	require.Contains(t, out, "WORD")

	_, err = runCLI(t, "", "", "genwords", "--words", "13")
	require.ErrorIs(t, err, mnemonic.ErrInvalidWordCount)
}

// TestConvert re-tags the account key of the test vector.
func TestConvert(t *testing.T) {
	out, err := runCLI(t, "", "", "convert", "--to", "xpub",
		testAccountZpub)
	require.NoError(t, err)
	xpub := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(xpub, "xpub"))

	out, err = runCLI(t, "", "", "--format", "json", "convert", "--to",
		"zpub", xpub)
	require.NoError(t, err)

	var res convertResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, convertResult{
		From: "xpub",
		To:   "zpub",
		Key:  testAccountZpub,
	}, res)

	_, err = runCLI(t, "", "", "convert", "--to", "vpub", xpub)
	require.ErrorIs(t, err, slip132.ErrWrongVersion)

	_, err = runCLI(t, "", "", "convert", "--to", "qpub", xpub)
	require.ErrorIs(t, err, slip132.ErrUnsupportedKeyType)

	_, err = runCLI(t, "", "", "convert", xpub)
	require.ErrorContains(t, err, "target version missing")

	_, err = runCLI(t, "", "", "convert", "--to", "xpub")
	require.ErrorIs(t, err, errMissingKey)
}

// TestInspect decodes the fields of extended keys.
func TestInspect(t *testing.T) {
	out, err := runCLI(
		t, "", "", "--format", "json", "inspect", vector1Master,
	)
	require.NoError(t, err)

	var res inspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "xpub", res.Version)
	require.EqualValues(t, 0, res.Depth)
	require.Equal(t, "00000000", res.ParentFingerprint)
	require.Equal(t, "0", res.ChildNumber)
	require.Equal(t, "3442193e", res.Fingerprint)
	require.Equal(t, vector1Master, res.GenericKey)

	out, err = runCLI(t, "", "", "inspect", testAccountZpub)
	require.NoError(t, err)
	require.Contains(t, out, "zpub")
	require.Contains(t, out, "child number:       0'")
	require.Contains(t, out, "bip84")

	// Private keys are refused.
	seed := bytes.Repeat([]byte{0x01}, 32)
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)

	_, err = runCLI(t, "", "", "inspect", master.String())
	require.ErrorIs(t, err, slip132.ErrUnsupportedKeyType)

	_, err = runCLI(t, "", "", "inspect")
	require.ErrorIs(t, err, errMissingKey)
}

// TestDerive derives child keys and addresses below extended public keys.
func TestDerive(t *testing.T) {
	// The default path is the first receive key of an account.
	out, err := runCLI(t, "", "", "derive", testAccountZpub)
	require.NoError(t, err)

	lines := outputLines(out)
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "zpub"))
	require.Equal(t, testReceive0, lines[1])

	out, err = runCLI(t, "", "", "--format", "json", "derive", "--path",
		"1/0", testAccountZpub)
	require.NoError(t, err)

	var res deriveResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "1/0", res.Path)
	require.Equal(t, testChange0, res.Address)

	// Paths below a master key are shown as absolute paths.
	out, err = runCLI(t, "", "", "--format", "json", "derive", "--path",
		"m/0", vector1Master)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "m/0", res.Path)

	master, err := hdkeychain.NewKeyFromString(vector1Master)
	require.NoError(t, err)
	child, err := master.Derive(0)
	require.NoError(t, err)
	require.Equal(t, child.String(), res.Key)

	_, err = runCLI(t, "", "", "derive", "--path", "0'/1",
		testAccountZpub)
	require.ErrorIs(t, err, hdkey.ErrHardenedDerivation)

	_, err = runCLI(t, "", "", "derive", "--path", "0/x",
		testAccountZpub)
	require.ErrorIs(t, err, hdkey.ErrInvalidPath)

	_, err = runCLI(t, "", "", "--network", "testnet", "derive",
		testAccountZpub)
	require.ErrorContains(t, err, "cannot be used on testnet")

	seed := bytes.Repeat([]byte{0x01}, 32)
	priv, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)

	_, err = runCLI(t, "", "", "derive", priv.String())
	require.ErrorIs(t, err, slip132.ErrUnsupportedKeyType)
	require.ErrorContains(t, err, "export the xpub instead")

	_, err = runCLI(t, "", "", "derive")
	require.ErrorIs(t, err, errMissingKey)
}
