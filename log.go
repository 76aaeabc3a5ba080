package segaddr

import (
	"fmt"
	"io"

	"github.com/btcsuite/btclog/v2"
	"github.com/lightninglabs/segaddr/addrgen"
	"github.com/lightninglabs/segaddr/build"
	"github.com/lightninglabs/segaddr/keychain"
)

// Subsystem defines the logging code of the segaddr front end.
const Subsystem = "SGAD"

// sgadLog is the logger of the command line front end. It is replaced by
// SetupLoggers.
var sgadLog = build.NewSubLogger(Subsystem, nil)

// SetupLoggers initializes all package-global logger variables.
func SetupLoggers(root *build.SubLoggerManager) {
	sgadLog = AddSubLogger(root, Subsystem)

	AddSubLogger(root, addrgen.Subsystem, addrgen.UseLogger)
	AddSubLogger(root, keychain.Subsystem, keychain.UseLogger)
}

// AddSubLogger is a helper method to conveniently create and register the
// logger of one or more sub systems.
func AddSubLogger(root *build.SubLoggerManager, subsystem string,
	useLoggers ...func(btclog.Logger)) btclog.Logger {

	// Create and register just a single logger to prevent them from
	// overwriting each other internally.
	logger := root.GenSubLogger(subsystem)
	root.RegisterSubLogger(subsystem, logger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}

	return logger
}

// Logging bundles the log outputs set up by InitLogging.
type Logging struct {
	// Manager holds all registered subsystem loggers.
	Manager *build.SubLoggerManager

	rotator *build.RotatingLogWriter
}

// InitLogging sets up the console and file loggers of the given config,
// registers all subsystems and applies the configured debug levels. The
// console output is written to console, which should not be the stream the
// results are printed to. Close must be called on shutdown to flush the log
// file.
func InitLogging(cfg *Config, console io.Writer) (*Logging, error) {
	rotator := build.NewRotatingLogWriter()
	if !cfg.LogConfig.File.Disable {
		err := rotator.InitLogRotator(cfg.LogConfig.File, cfg.LogFile())
		if err != nil {
			return nil, fmt.Errorf("unable to initialize log "+
				"rotator: %w", err)
		}
	}

	manager := build.NewSubLoggerManager(build.NewDefaultLogHandlers(
		cfg.LogConfig, console, rotator,
	))
	SetupLoggers(manager)

	// Parse, validate, and set debug log level(s).
	err := build.ParseAndSetDebugLevels(cfg.DebugLevel, manager)
	if err != nil {
		_ = rotator.Close()

		return nil, err
	}

	// Report a missing config file only once the log levels are known.
	if cfg.configFileErr != nil {
		sgadLog.Debugf("Config file not loaded, using defaults: %v",
			cfg.configFileErr)
	}

	sgadLog.Debugf("segaddr version %s, network %s, log file %s",
		build.Version(), cfg.Network, cfg.LogFile())

	return &Logging{
		Manager: manager,
		rotator: rotator,
	}, nil
}

// Close flushes and closes the log file.
func (l *Logging) Close() error {
	return l.rotator.Close()
}

// Logger returns the logger of the front end.
func Logger() btclog.Logger {
	return sgadLog
}
