// Copyright (C) 2015-2022 The Lightning Network Developers

package segaddr

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	flags "github.com/jessevdk/go-flags"
	"github.com/lightninglabs/segaddr/addrgen"
	"github.com/lightninglabs/segaddr/build"
	"github.com/lightninglabs/segaddr/hdkey"
	"github.com/lightninglabs/segaddr/keychain"
	"github.com/lightninglabs/segaddr/lncfg"
	"github.com/lightninglabs/segaddr/mnemonic"
)

const (
	defaultLogLevel   = "info"
	defaultNetwork    = lncfg.MainNet
	defaultWords      = 24
	defaultCount      = 10
	defaultNumWorkers = 1

	// FormatPlain prints one result per line.
	FormatPlain = "plain"

	// FormatJSON prints results as indented JSON.
	FormatJSON = "json"

	// FormatYAML prints results as a YAML document.
	FormatYAML = "yaml"

	// FormatTable prints results as a text table.
	FormatTable = "table"
)

var (
	// DefaultSegaddrDir is the default directory where segaddr keeps its
	// configuration and log files.
	DefaultSegaddrDir = btcutil.AppDataDir("segaddr", false)

	// DefaultConfigFile is the default full path of segaddr's
	// configuration file.
	DefaultConfigFile = filepath.Join(
		DefaultSegaddrDir, lncfg.DefaultConfigFilename,
	)

	defaultLogDir = filepath.Join(
		DefaultSegaddrDir, lncfg.DefaultLogDirname,
	)

	// OutputFormats lists all supported output formats.
	OutputFormats = []string{
		FormatPlain, FormatJSON, FormatYAML, FormatTable,
	}
)

// Config is the set of options segaddr can be configured with, either
// through the configuration file or through command line flags.
//
//nolint:lll
type Config struct {
	SegaddrDir string `long:"segaddrdir" description:"The base directory that contains segaddr's configuration and log files."`
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file."`
	LogDir     string `long:"logdir" description:"Directory to log output."`

	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off} -- You may also specify <global-level>,<subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems."`

	Network string `long:"network" description:"The network keys and addresses are derived for." choice:"mainnet" choice:"testnet" choice:"regtest" choice:"signet"`
	Format  string `long:"format" description:"The output format of all commands." choice:"plain" choice:"json" choice:"yaml" choice:"table"`

	Words      int    `long:"words" description:"The number of words of newly generated mnemonics {12, 15, 18, 21, 24}."`
	Account    uint32 `long:"account" description:"The BIP-84 account number the account key is exported for."`
	Count      uint32 `long:"count" description:"The number of addresses to generate."`
	StartIndex uint32 `long:"start" description:"The index of the first generated address."`
	Change     bool   `long:"change" description:"Generate change addresses instead of receive addresses."`
	Workers    int    `long:"workers" description:"The number of addresses derived in parallel."`

	LogConfig *build.LogConfig `group:"logging" namespace:"logging"`

	// netParams is resolved from Network by ValidateConfig.
	netParams *chaincfg.Params

	// configFileErr is set if the configuration file could not be read.
	// It is reported once logging is up.
	configFileErr error
}

// DefaultConfig returns all default values for the Config struct.
func DefaultConfig() Config {
	return Config{
		SegaddrDir: DefaultSegaddrDir,
		ConfigFile: DefaultConfigFile,
		LogDir:     defaultLogDir,
		DebugLevel: defaultLogLevel,
		Network:    defaultNetwork,
		Format:     FormatPlain,
		Words:      defaultWords,
		Count:      defaultCount,
		Workers:    defaultNumWorkers,
		LogConfig:  build.DefaultLogConfig(),
	}
}

// LoadConfig reads the configuration file that preCfg points to on top of
// preCfg. The options of the file are then overwritten by applyFlags, which
// is expected to copy all command line flags the user explicitly set. A
// missing configuration file is not an error, a malformed one is.
//
// The returned config is validated.
func LoadConfig(preCfg Config,
	applyFlags func(*Config) error) (*Config, error) {

	// If the config file path has not been modified by the user, then
	// we'll use the default config file path. However, if the user has
	// modified their segaddr dir, then we should assume they intend to use
	// the config file within it.
	configFileDir := lncfg.CleanAndExpandPath(preCfg.SegaddrDir)
	configFilePath := lncfg.CleanAndExpandPath(preCfg.ConfigFile)
	if configFileDir != DefaultSegaddrDir &&
		configFilePath == DefaultConfigFile {

		configFilePath = filepath.Join(
			configFileDir, lncfg.DefaultConfigFilename,
		)
	}

	// Next, load any additional configuration options from the file.
	var configFileErr error
	cfg := preCfg
	if err := flags.IniParse(configFilePath, &cfg); err != nil {
		// If it's a parsing related error, then we'll return
		// immediately, otherwise we can proceed as possibly the config
		// file doesn't exist which is OK.
		var iniErr *flags.IniError
		if errors.As(err, &iniErr) {
			return nil, err
		}

		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to read config file "+
				"%v: %w", configFilePath, err)
		}

		configFileErr = err
	}

	// Finally, apply the command line options again to ensure they take
	// precedence.
	if applyFlags != nil {
		if err := applyFlags(&cfg); err != nil {
			return nil, err
		}
	}

	// Make sure everything we just loaded makes sense.
	cleanCfg, err := ValidateConfig(cfg)
	if err != nil {
		return nil, err
	}
	cleanCfg.configFileErr = configFileErr

	return cleanCfg, nil
}

// ValidateConfig checks the given configuration to be sane, expands all paths
// and resolves the network parameters.
func ValidateConfig(cfg Config) (*Config, error) {
	// If the provided segaddr directory is not the default, we'll modify
	// the path to the log directory to be relative to the new segaddr dir,
	// unless that one was set explicitly as well.
	segaddrDir := lncfg.CleanAndExpandPath(cfg.SegaddrDir)
	if segaddrDir == "" {
		segaddrDir = DefaultSegaddrDir
	}
	if segaddrDir != DefaultSegaddrDir && cfg.LogDir == defaultLogDir {
		cfg.LogDir = filepath.Join(segaddrDir, lncfg.DefaultLogDirname)
	}
	cfg.SegaddrDir = segaddrDir
	cfg.ConfigFile = lncfg.CleanAndExpandPath(cfg.ConfigFile)

	params, err := lncfg.ChainParams(cfg.Network)
	if err != nil {
		return nil, err
	}
	cfg.netParams = params
	cfg.Network = lncfg.NormalizeNetwork(params.Name)

	// Log files of the different networks are kept apart.
	cfg.LogDir = filepath.Join(
		lncfg.CleanAndExpandPath(cfg.LogDir), cfg.Network,
	)

	if !slices.Contains(OutputFormats, cfg.Format) {
		return nil, fmt.Errorf("invalid output format %q, must be one "+
			"of: %v", cfg.Format, OutputFormats)
	}

	if !slices.Contains(mnemonic.SupportedWordCounts, cfg.Words) {
		return nil, fmt.Errorf("%w: %d", mnemonic.ErrInvalidWordCount,
			cfg.Words)
	}

	if cfg.Account >= hdkey.HardenedKeyStart {
		return nil, fmt.Errorf("%w: %d", keychain.ErrInvalidAccount,
			cfg.Account)
	}

	if cfg.LogConfig == nil {
		cfg.LogConfig = build.DefaultLogConfig()
	}
	if err := cfg.LogConfig.Validate(); err != nil {
		return nil, err
	}

	// The generator options are checked by the generator itself.
	genCfg := cfg.AddrGenConfig()
	if err := genCfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NetParams returns the parameters of the configured network. It is only set
// on configs returned by ValidateConfig or LoadConfig.
func (c *Config) NetParams() *chaincfg.Params {
	return c.netParams
}

// LogFile returns the full path of the log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.LogDir, lncfg.DefaultLogFilename)
}

// AddrGenConfig returns the address generator options of the config.
func (c *Config) AddrGenConfig() addrgen.Config {
	branch := keychain.BranchExternal
	if c.Change {
		branch = keychain.BranchInternal
	}

	return addrgen.Config{
		NetParams:  c.netParams,
		Branch:     branch,
		StartIndex: c.StartIndex,
		Workers:    c.Workers,
	}
}
