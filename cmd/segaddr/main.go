// Copyright (C) 2015-2022 The Lightning Network Developers

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/lightninglabs/segaddr"
	"github.com/lightninglabs/segaddr/build"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[segaddr] %v\n", err)
	os.Exit(1)
}

func main() {
	app := newApp(&cliIO{
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		errOut:     os.Stderr,
		isTerminal: stdinIsTerminal,
	})

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

// stdinIsTerminal returns true if the standard input is a terminal.
func stdinIsTerminal() bool {
	// The variable syscall.Stdin is of a different type in the Windows API
	// that's why we need the explicit cast.
	return term.IsTerminal(int(syscall.Stdin)) // nolint:unconvert
}

// cliIO holds the streams the commands talk to the user through. Results are
// written to out, prompts and log lines to errOut.
type cliIO struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	// isTerminal reports whether in is an interactive terminal, in which
	// case secrets are read without echo.
	isTerminal func() bool
}

func newApp(cio *cliIO) *cli.App {
	app := cli.NewApp()
	app.Name = "segaddr"
	app.Version = build.Version() + " commit=" + build.Commit
	app.Usage = "derive BIP-84 account keys and native segwit addresses"
	app.Writer = cio.out
	app.ErrWriter = cio.errOut
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:      "segaddrdir",
			Value:     segaddr.DefaultSegaddrDir,
			Usage:     "The path to segaddr's base directory.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name:      "configfile, C",
			Value:     segaddr.DefaultConfigFile,
			Usage:     "The path to segaddr's configuration file.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name:      "logdir",
			Usage:     "The directory to write log files to.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name: "network, n",
			Usage: "The network to derive keys and addresses " +
				"for: mainnet, testnet, regtest or signet.",
			Value: "mainnet",
		},
		cli.StringFlag{
			Name: "debuglevel, d",
			Usage: "The logging level of all subsystems, or " +
				"<global-level>,<subsystem>=<level>,... " +
				"to set the level of individual subsystems.",
			Value: "info",
		},
		cli.StringFlag{
			Name: "format",
			Usage: "The output format: plain, json, yaml or " +
				"table.",
			Value: segaddr.FormatPlain,
		},
	}
	app.Commands = []cli.Command{
		genWordsCommand(cio),
		genPubCommand(cio),
		genAddressCommand(cio),
		convertCommand(cio),
		inspectCommand(cio),
		deriveCommand(cio),
	}

	return app
}

// commandFunc is the body of a command that runs with a loaded config.
type commandFunc func(ctx context.Context, cliCtx *cli.Context,
	cfg *segaddr.Config) error

// withConfig turns a command body into a cli action. The configuration file
// is loaded and the command line flags are applied on top of it, then the
// loggers are set up for the duration of the command.
func withConfig(cio *cliIO, f commandFunc) func(*cli.Context) error {
	return func(cliCtx *cli.Context) error {
		cfg, err := loadConfig(cliCtx)
		if err != nil {
			return err
		}

		logging, err := segaddr.InitLogging(cfg, cio.errOut)
		if err != nil {
			return err
		}
		defer func() {
			_ = logging.Close()
		}()

		ctx, cancel := signal.NotifyContext(
			context.Background(), os.Interrupt, syscall.SIGTERM,
		)
		defer cancel()

		return f(ctx, cliCtx, cfg)
	}
}

// loadConfig reads the configuration file and overlays every flag that was
// explicitly set on the command line.
func loadConfig(cliCtx *cli.Context) (*segaddr.Config, error) {
	preCfg := segaddr.DefaultConfig()
	preCfg.SegaddrDir = cliCtx.GlobalString("segaddrdir")
	preCfg.ConfigFile = cliCtx.GlobalString("configfile")

	return segaddr.LoadConfig(preCfg, func(cfg *segaddr.Config) error {
		if cliCtx.GlobalIsSet("logdir") {
			cfg.LogDir = cliCtx.GlobalString("logdir")
		}
		if cliCtx.GlobalIsSet("network") {
			cfg.Network = cliCtx.GlobalString("network")
		}
		if cliCtx.GlobalIsSet("debuglevel") {
			cfg.DebugLevel = cliCtx.GlobalString("debuglevel")
		}
		if cliCtx.GlobalIsSet("format") {
			cfg.Format = cliCtx.GlobalString("format")
		}

		// Command specific flags. Flags a command doesn't define are
		// never set.
		if cliCtx.IsSet("words") {
			cfg.Words = cliCtx.Int("words")
		}
		if cliCtx.IsSet("change") {
			cfg.Change = cliCtx.Bool("change")
		}
		if cliCtx.IsSet("workers") {
			cfg.Workers = cliCtx.Int("workers")
		}

		uint32Flags := []struct {
			name string
			dst  *uint32
		}{
			{"account", &cfg.Account},
			{"count", &cfg.Count},
			{"start", &cfg.StartIndex},
		}
		for _, flag := range uint32Flags {
			if !cliCtx.IsSet(flag.name) {
				continue
			}

			value := cliCtx.Uint64(flag.name)
			if value > math.MaxUint32 {
				return fmt.Errorf("%s out of range: %d",
					flag.name, value)
			}
			*flag.dst = uint32(value)
		}

		return nil
	})
}
