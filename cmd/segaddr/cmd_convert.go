package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lightninglabs/segaddr"
	"github.com/lightninglabs/segaddr/hdkey"
	"github.com/lightninglabs/segaddr/slip132"
	"github.com/urfave/cli"
)

// errMissingKey is returned if a command needs a key argument that wasn't
// given.
var errMissingKey = errors.New("extended key argument missing")

type convertResult struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Key  string `json:"key" yaml:"key"`
}

func (r *convertResult) writePlain(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Key)
	return err
}

func (r *convertResult) tableRows() (table.Row, []table.Row) {
	return table.Row{"From", "To", "Key"}, []table.Row{
		{r.From, r.To, r.Key},
	}
}

// versionNames returns the names of all known versions.
func versionNames() string {
	tags := slip132.AllTags()
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.String())
	}

	return strings.Join(names, ", ")
}

func convertCommand(cio *cliIO) cli.Command {
	return cli.Command{
		Name:      "convert",
		Category:  "Keys",
		Usage:     "Change the SLIP-132 version of an extended key.",
		ArgsUsage: "key",
		Description: `
	Re-encode an extended key with another version prefix, for example
	to turn a zpub into the equivalent xpub. The key material is left
	untouched, so only versions of the same network and of the same kind
	(public or private) can be converted into each other.`,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "to",
				Usage: "The target version, one of: " +
					versionNames(),
			},
		},
		Action: withConfig(cio, func(_ context.Context,
			cliCtx *cli.Context, cfg *segaddr.Config) error {

			key := cliCtx.Args().First()
			if key == "" {
				return errMissingKey
			}

			if !cliCtx.IsSet("to") {
				return errors.New("target version missing, " +
					"use --to")
			}
			to, err := slip132.TagFromName(cliCtx.String("to"))
			if err != nil {
				return err
			}

			from, err := slip132.Detect(key)
			if err != nil {
				return err
			}

			converted, err := slip132.Convert(key, to)
			if err != nil {
				return err
			}

			return printResult(cio.out, cfg.Format, &convertResult{
				From: from.String(),
				To:   to.String(),
				Key:  converted,
			})
		}),
	}
}

type inspectResult struct {
	Version           string `json:"version" yaml:"version"`
	Network           string `json:"network" yaml:"network"`
	ScriptType        string `json:"script_type" yaml:"script_type"`
	Depth             uint8  `json:"depth" yaml:"depth"`
	ParentFingerprint string `json:"parent_fingerprint" yaml:"parent_fingerprint"`
	ChildNumber       string `json:"child_number" yaml:"child_number"`
	ChainCode         string `json:"chain_code" yaml:"chain_code"`
	PubKey            string `json:"pubkey" yaml:"pubkey"`
	Fingerprint       string `json:"fingerprint" yaml:"fingerprint"`
	GenericKey        string `json:"generic_key" yaml:"generic_key"`
}

func (r *inspectResult) fields() []string {
	return []string{
		"version", r.Version,
		"network", r.Network,
		"script type", r.ScriptType,
		"depth", strconv.Itoa(int(r.Depth)),
		"parent fingerprint", r.ParentFingerprint,
		"child number", r.ChildNumber,
		"chain code", r.ChainCode,
		"pubkey", r.PubKey,
		"fingerprint", r.Fingerprint,
		"generic key", r.GenericKey,
	}
}

func (r *inspectResult) writePlain(w io.Writer) error {
	fields := r.fields()
	for i := 0; i+1 < len(fields); i += 2 {
		_, err := fmt.Fprintf(w, "%-19s %s\n", fields[i]+":",
			fields[i+1])
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *inspectResult) tableRows() (table.Row, []table.Row) {
	return table.Row{"Field", "Value"}, fieldRows(r.fields()...)
}

// inspectKey decodes an extended public key into its fields.
func inspectKey(key string) (*inspectResult, error) {
	tag, err := slip132.Detect(key)
	if err != nil {
		return nil, err
	}

	if tag.IsPrivate() {
		return nil, fmt.Errorf("%w: %v is a private key",
			slip132.ErrUnsupportedKeyType, tag)
	}

	extKey, err := hdkey.FromString(key)
	if err != nil {
		return nil, err
	}

	generic, err := slip132.Convert(key, tag.Generic())
	if err != nil {
		return nil, err
	}

	fingerprint := extKey.Fingerprint()

	return &inspectResult{
		Version:           tag.String(),
		Network:           tag.Network().String(),
		ScriptType:        tag.ScriptType().String(),
		Depth:             extKey.Depth,
		ParentFingerprint: hex.EncodeToString(extKey.ParentFP[:]),
		ChildNumber:       hdkey.ChildIndex(extKey.ChildNum).String(),
		ChainCode:         hex.EncodeToString(extKey.ChainCode[:]),
		PubKey:            hex.EncodeToString(extKey.KeyData[:]),
		Fingerprint:       hex.EncodeToString(fingerprint[:]),
		GenericKey:        generic,
	}, nil
}

func inspectCommand(cio *cliIO) cli.Command {
	return cli.Command{
		Name:      "inspect",
		Category:  "Keys",
		Usage:     "Print the fields of an extended public key.",
		ArgsUsage: "key",
		Action: withConfig(cio, func(_ context.Context,
			cliCtx *cli.Context, cfg *segaddr.Config) error {

			key := cliCtx.Args().First()
			if key == "" {
				return errMissingKey
			}

			res, err := inspectKey(key)
			if err != nil {
				return err
			}

			return printResult(cio.out, cfg.Format, res)
		}),
	}
}
