package config

import (
	"crypto/ecdsa"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/recorder"
)

// Default filenames.
const (
	// DefaultKeyfile is the default name of the file containing the node's
	// private key
	DefaultKeyfile = "priv_key"

	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"
)

// Default configuration values.
const (
	DefaultLogLevel           = "debug"
	DefaultServiceAddr        = "127.0.0.1:8000"
	DefaultHashesPerTick      = 12500
	DefaultTargetTickDuration = 6250 * time.Microsecond
	DefaultTicksPerSlot       = 64
	DefaultTickCacheSize      = recorder.DefaultTickCacheSize
	DefaultEntryChannelSize   = recorder.DefaultEntryChannelSize
	DefaultStore              = false
	DefaultSubmitInterval     = time.Duration(0)
)

// Config contains all the configuration properties of a PoH node.
type Config struct {
	// DataDir is the top-level directory containing the node's configuration
	// and data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a copy of the info and debug logs.
	LogFile string `mapstructure:"log-file"`

	// HashesPerTick is the number of hashes between two ticks. Zero disables
	// hashing and paces ticks with TargetTickDuration alone.
	HashesPerTick uint64 `mapstructure:"hashes-per-tick"`

	// TargetTickDuration is the expected time between two ticks.
	TargetTickDuration time.Duration `mapstructure:"target-tick-duration"`

	// TicksPerSlot is the number of ticks in a slot.
	TicksPerSlot uint64 `mapstructure:"ticks-per-slot"`

	// TickCacheSize bounds the number of ticks kept while no slot can receive
	// them.
	TickCacheSize int `mapstructure:"tick-cache-size"`

	// EntryChannelSize is the capacity of the channel between the recorder and
	// the ledger writer.
	EntryChannelSize int `mapstructure:"entry-channel-size"`

	// Store activates persistant storage.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// Bootstrap resumes the chain from the last complete slot of an existing
	// database. Forces Store.
	Bootstrap bool `mapstructure:"bootstrap"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the optional HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	// SubmitInterval is the period of the demo transaction submitter. Zero
	// disables it.
	SubmitInterval time.Duration `mapstructure:"submit-interval"`

	// Moniker defines the friendly name of this node
	Moniker string `mapstructure:"moniker"`

	// Key is the private key used to sign demo transactions.
	Key *ecdsa.PrivateKey

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:            DefaultDataDir(),
		LogLevel:           DefaultLogLevel,
		ServiceAddr:        DefaultServiceAddr,
		HashesPerTick:      DefaultHashesPerTick,
		TargetTickDuration: DefaultTargetTickDuration,
		TicksPerSlot:       DefaultTicksPerSlot,
		TickCacheSize:      DefaultTickCacheSize,
		EntryChannelSize:   DefaultEntryChannelSize,
		Store:              DefaultStore,
		DatabaseDir:        DefaultDatabaseDir(),
		SubmitInterval:     DefaultSubmitInterval,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level directory, and updates the database directory
// if it is currently set to the default value. If the database directory is not
// currently the default, it means the user has explicitely set it to something
// else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Keyfile returns the full path of the file containing the private key.
func (c *Config) Keyfile() string {
	return filepath.Join(c.DataDir, DefaultKeyfile)
}

// PohConfig returns the pace of the chain.
func (c *Config) PohConfig() recorder.PohConfig {
	return recorder.PohConfig{
		HashesPerTick:      c.HashesPerTick,
		TargetTickDuration: c.TargetTickDuration,
	}
}

// RecorderConfig returns the buffer sizes of the recorder.
func (c *Config) RecorderConfig() recorder.Config {
	return recorder.Config{
		TickCacheSize:    c.TickCacheSize,
		EntryChannelSize: c.EntryChannelSize,
	}
}

// Logger returns a formatted logrus Entry, with prefix set to "poh". When
// LogFile is set, info and debug logs are also written to it.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			c.logger.Hooks.Add(lfshook.NewHook(
				lfshook.PathMap{
					logrus.InfoLevel:  c.LogFile,
					logrus.DebugLevel: c.LogFile,
				},
				&logrus.TextFormatter{},
			))
		}
	}
	return c.logger.WithField("prefix", "poh")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level config based
// on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Poh")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Poh")
		} else {
			return filepath.Join(home, ".poh")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
