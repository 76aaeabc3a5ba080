package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lightninglabs/segaddr"
	"github.com/lightninglabs/segaddr/hdkey"
	"github.com/lightninglabs/segaddr/lnutils"
	"github.com/lightninglabs/segaddr/segwit"
	"github.com/lightninglabs/segaddr/slip132"
	"github.com/urfave/cli"
)

// defaultDerivePath is the first receive key below an account key.
const defaultDerivePath = "0/0"

type deriveResult struct {
	Path    string `json:"path" yaml:"path"`
	Key     string `json:"key" yaml:"key"`
	PubKey  string `json:"pubkey" yaml:"pubkey"`
	Address string `json:"address" yaml:"address"`
}

func (r *deriveResult) writePlain(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", r.Key, r.Address)
	return err
}

func (r *deriveResult) tableRows() (table.Row, []table.Row) {
	return table.Row{"Field", "Value"}, fieldRows(
		"path", r.Path,
		"key", r.Key,
		"pubkey", r.PubKey,
		"address", r.Address,
	)
}

// deriveKey derives the public child of key found at pathStr and the P2WPKH
// address of its public key. The child keeps the version of key.
func deriveKey(ctx context.Context, key, pathStr string,
	cfg *segaddr.Config) (*deriveResult, error) {

	tag, err := slip132.Detect(key)
	if err != nil {
		return nil, err
	}

	if tag.IsPrivate() {
		return nil, fmt.Errorf("%w: %v is a private key, export the "+
			"%v instead", slip132.ErrUnsupportedKeyType, tag,
			tag.Public())
	}

	family, err := slip132.FamilyForParams(cfg.NetParams())
	if err != nil {
		return nil, err
	}
	if tag.Network() != family {
		return nil, fmt.Errorf("%v key cannot be used on %v",
			tag.Network(), cfg.Network)
	}

	path, err := hdkey.ParsePath(pathStr)
	if err != nil {
		return nil, err
	}

	// Refuse the whole path up front rather than failing half way.
	if path.HasHardened() {
		return nil, fmt.Errorf("%w: path %v",
			hdkey.ErrHardenedDerivation, path)
	}

	parent, err := hdkey.FromString(key)
	if err != nil {
		return nil, err
	}

	child, err := hdkey.DerivePublic(parent, path)
	if err != nil {
		return nil, err
	}

	pub, err := child.PubKey()
	if err != nil {
		return nil, err
	}

	addr, err := segwit.AddressFromPubKey(pub, cfg.NetParams())
	if err != nil {
		return nil, err
	}

	displayPath := path.String()
	if parent.IsMaster() {
		displayPath = hdkey.PathFromMaster(path)
	}

	log := segaddr.Logger()
	log.DebugS(ctx, "Derived key", "version", tag, "path", displayPath,
		lnutils.LogPubKey("pubkey", pub))
	log.Tracef("Derived child %v", lnutils.NewLogClosure(func() string {
		return fmt.Sprintf("depth=%d child=%v parent_fp=%x",
			child.Depth, hdkey.ChildIndex(child.ChildNum),
			child.ParentFP[:])
	}))

	return &deriveResult{
		Path:    displayPath,
		Key:     child.String(),
		PubKey:  hex.EncodeToString(child.KeyData[:]),
		Address: addr,
	}, nil
}

func deriveCommand(cio *cliIO) cli.Command {
	return cli.Command{
		Name:      "derive",
		Category:  "Keys",
		Usage:     "Derive a child of an extended public key.",
		ArgsUsage: "key",
		Description: `
	Derive the public child key found at --path below the given extended
	public key, and print it along with its native segwit address. Only
	non-hardened paths can be derived from a public key. The key must
	belong to the selected network.`,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name: "path",
				Usage: "The derivation path relative to " +
					"the key, e.g. 1/5, or m/0/1 " +
					"for a master key.",
				Value: defaultDerivePath,
			},
		},
		Action: withConfig(cio, func(ctx context.Context,
			cliCtx *cli.Context, cfg *segaddr.Config) error {

			key := cliCtx.Args().First()
			if key == "" {
				return errMissingKey
			}

			res, err := deriveKey(
				ctx, key, cliCtx.String("path"), cfg,
			)
			if err != nil {
				return err
			}

			return printResult(cio.out, cfg.Format, res)
		}),
	}
}
