package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lightninglabs/segaddr"
	"github.com/lightninglabs/segaddr/hdkey"
	"github.com/lightninglabs/segaddr/keychain"
	"github.com/lightninglabs/segaddr/mnemonic"
	"github.com/urfave/cli"
)

type mnemonicResult struct {
	Mnemonic string `json:"mnemonic" yaml:"mnemonic"`
	Words    int    `json:"words" yaml:"words"`
}

func (r *mnemonicResult) writePlain(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Mnemonic)
	return err
}

func (r *mnemonicResult) tableRows() (table.Row, []table.Row) {
	words := strings.Fields(r.Mnemonic)
	rows := make([]table.Row, 0, len(words))
	for i, word := range words {
		rows = append(rows, table.Row{i + 1, word})
	}

	return table.Row{"#", "Word"}, rows
}

func genWordsCommand(cio *cliIO) cli.Command {
	return cli.Command{
		Name:     "genwords",
		Category: "Keys",
		Usage:    "Generate a new BIP-39 mnemonic.",
		Description: `
	Generate a new random BIP-39 mnemonic from fresh entropy of the
	operating system. Write the words down, they are the only backup of
	all keys derived from them.`,
		Flags: []cli.Flag{
			cli.IntFlag{
				Name: "words",
				Usage: "The number of words: 12, 15, 18, " +
					"21 or 24 (default 24).",
			},
		},
		Action: withConfig(cio, func(_ context.Context, _ *cli.Context,
			cfg *segaddr.Config) error {

			m, err := mnemonic.Generate(cfg.Words)
			if err != nil {
				return err
			}

			return printResult(cio.out, cfg.Format, &mnemonicResult{
				Mnemonic: m,
				Words:    cfg.Words,
			})
		}),
	}
}

type accountResult struct {
	Network           string `json:"network" yaml:"network"`
	Account           uint32 `json:"account" yaml:"account"`
	Path              string `json:"path" yaml:"path"`
	MasterFingerprint string `json:"master_fingerprint" yaml:"master_fingerprint"`
	Key               string `json:"key" yaml:"key"`
	GenericKey        string `json:"generic_key" yaml:"generic_key"`
	Descriptor        string `json:"descriptor" yaml:"descriptor"`
}

func newAccountResult(network string,
	acct *keychain.AccountKey) (*accountResult, error) {

	key, err := acct.DisplayString()
	if err != nil {
		return nil, err
	}

	return &accountResult{
		Network:           network,
		Account:           acct.Account,
		Path:              hdkey.PathFromMaster(acct.Path()),
		MasterFingerprint: fmt.Sprintf("%x", acct.MasterFingerprint[:]),
		Key:               key,
		GenericKey:        acct.GenericString(),
		Descriptor:        acct.Descriptor(),
	}, nil
}

func (r *accountResult) writePlain(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", r.Key, r.GenericKey)
	return err
}

func (r *accountResult) tableRows() (table.Row, []table.Row) {
	return table.Row{"Field", "Value"}, fieldRows(
		"network", r.Network,
		"account", strconv.FormatUint(uint64(r.Account), 10),
		"path", r.Path,
		"master fingerprint", r.MasterFingerprint,
		"key", r.Key,
		"generic key", r.GenericKey,
		"descriptor", r.Descriptor,
	)
}

func genPubCommand(cio *cliIO) cli.Command {
	return cli.Command{
		Name:     "genpub",
		Category: "Keys",
		Usage: "Export the extended public key of a BIP-84 account " +
			"from a mnemonic.",
		Description: `
	Derive the account key m/84'/coin'/account' from a BIP-39 mnemonic
	and print it with the BIP-84 version (zpub or vpub) as well as the
	generic BIP-32 version (xpub or tpub).

	The mnemonic is read from the terminal without echoing it, or from
	standard input if that isn't a terminal.`,
		Flags: []cli.Flag{
			cli.Uint64Flag{
				Name:  "account",
				Usage: "The account number to export.",
			},
			cli.BoolFlag{
				Name: "passphrase",
				Usage: "Prompt for the BIP-39 passphrase the " +
					"mnemonic is protected with.",
			},
		},
		Action: withConfig(cio, func(_ context.Context,
			cliCtx *cli.Context, cfg *segaddr.Config) error {

			m, err := cio.readSecret("Input your 12 to 24-word " +
				"mnemonic separated by spaces: ")
			if err != nil {
				return err
			}

			var passphrase string
			if cliCtx.Bool("passphrase") {
				passphrase, err = cio.readSecret(
					"Input your passphrase: ",
				)
				if err != nil {
					return err
				}
			}

			seed, err := mnemonic.ToSeed(m, passphrase)
			if err != nil {
				return err
			}

			acct, err := keychain.DeriveAccount(
				seed, cfg.NetParams(), cfg.Account,
			)
			if err != nil {
				return err
			}

			res, err := newAccountResult(cfg.Network, acct)
			if err != nil {
				return err
			}

			return printResult(cio.out, cfg.Format, res)
		}),
	}
}
