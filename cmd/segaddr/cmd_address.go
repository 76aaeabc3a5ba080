package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lightninglabs/segaddr"
	"github.com/lightninglabs/segaddr/addrgen"
	"github.com/urfave/cli"
)

type addressList []addrgen.Address

func (l addressList) writePlain(w io.Writer) error {
	for _, addr := range l {
		if _, err := fmt.Fprintln(w, addr.Address); err != nil {
			return err
		}
	}

	return nil
}

func (l addressList) tableRows() (table.Row, []table.Row) {
	rows := make([]table.Row, 0, len(l))
	for _, addr := range l {
		rows = append(rows, table.Row{
			addr.Index, addr.Path, addr.Address,
		})
	}

	return table.Row{"Index", "Path", "Address"}, rows
}

func genAddressCommand(cio *cliIO) cli.Command {
	return cli.Command{
		Name:      "genaddress",
		Category:  "Addresses",
		Usage:     "Generate P2WPKH addresses of an account key.",
		ArgsUsage: "[xpub|zpub]",
		Description: `
	Derive consecutive native segwit (P2WPKH) addresses from the extended
	public key of a BIP-84 account. The key may carry the generic
	(xpub/tpub) or the BIP-84 (zpub/vpub) version of the selected
	network. If it isn't given as an argument it is read from standard
	input.`,
		Flags: []cli.Flag{
			cli.Uint64Flag{
				Name:  "count",
				Usage: "The number of addresses to generate.",
			},
			cli.Uint64Flag{
				Name:  "start",
				Usage: "The index of the first address.",
			},
			cli.BoolFlag{
				Name: "change",
				Usage: "Generate change addresses instead of " +
					"receive addresses.",
			},
			cli.IntFlag{
				Name: "workers",
				Usage: "The number of addresses derived in " +
					"parallel.",
			},
		},
		Action: withConfig(cio, func(ctx context.Context,
			cliCtx *cli.Context, cfg *segaddr.Config) error {

			if cliCtx.NArg() > 1 {
				return fmt.Errorf("too many arguments, "+
					"expected a single key, got %d",
					cliCtx.NArg())
			}

			key := cliCtx.Args().First()
			if key == "" {
				var err error
				key, err = cio.readLine("Input the account " +
					"extended public key: ")
				if err != nil {
					return err
				}
			}

			gen, err := addrgen.New(cfg.AddrGenConfig())
			if err != nil {
				return err
			}

			addrs, err := gen.Generate(ctx, key, cfg.Count)
			if err != nil {
				return err
			}

			segaddr.Logger().Debugf("Generated %d addresses",
				len(addrs))

			return printResult(
				cio.out, cfg.Format, addressList(addrs),
			)
		}),
	}
}
