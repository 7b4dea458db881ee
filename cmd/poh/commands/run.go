package commands

import (
	"github.com/mosaicnetworks/poh/src/validator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//NewRunCmd returns the command that starts a PoH node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runPoh,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runPoh(cmd *cobra.Command, args []string) error {
	engine := validator.NewValidator(&_config.Poh)

	if err := engine.Init(); err != nil {
		_config.Poh.Logger().WithError(err).Error("Cannot initialize engine")
		return err
	}

	defer engine.Shutdown()

	if err := engine.Run(); err != nil {
		_config.Poh.Logger().WithError(err).Error("PoH service failed")
		return err
	}

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().String("datadir", _config.Poh.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.Poh.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.Poh.LogFile, "File receiving a copy of info and debug logs")
	cmd.Flags().String("moniker", _config.Poh.Moniker, "Optional name")

	// Chain
	cmd.Flags().Uint64("hashes-per-tick", _config.Poh.HashesPerTick, "Number of hashes between ticks. 0 only sleeps between ticks")
	cmd.Flags().Duration("target-tick-duration", _config.Poh.TargetTickDuration, "Expected time between ticks")
	cmd.Flags().Uint64("ticks-per-slot", _config.Poh.TicksPerSlot, "Number of ticks in a slot")
	cmd.Flags().Int("tick-cache-size", _config.Poh.TickCacheSize, "Max number of ticks cached while no slot is in progress")
	cmd.Flags().Int("entry-channel-size", _config.Poh.EntryChannelSize, "Capacity of the channel between the recorder and the ledger")

	// Service
	cmd.Flags().Bool("no-service", _config.Poh.NoService, "Disable HTTP service")
	cmd.Flags().StringP("service-listen", "s", _config.Poh.ServiceAddr, "Listen IP:Port for HTTP service")

	// Store
	cmd.Flags().Bool("store", _config.Poh.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.Poh.DatabaseDir, "Dabatabase directory")
	cmd.Flags().Bool("bootstrap", _config.Poh.Bootstrap, "Resume the chain from the database")

	// Demo
	cmd.Flags().Duration("submit-interval", _config.Poh.SubmitInterval, "Time between demo transactions. 0 disables them")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.Poh.SetDataDir(_config.Poh.DataDir)

	logFields := logrus.Fields{
		"poh.DataDir":            _config.Poh.DataDir,
		"poh.LogLevel":           _config.Poh.LogLevel,
		"poh.LogFile":            _config.Poh.LogFile,
		"poh.Moniker":            _config.Poh.Moniker,
		"poh.HashesPerTick":      _config.Poh.HashesPerTick,
		"poh.TargetTickDuration": _config.Poh.TargetTickDuration,
		"poh.TicksPerSlot":       _config.Poh.TicksPerSlot,
		"poh.TickCacheSize":      _config.Poh.TickCacheSize,
		"poh.EntryChannelSize":   _config.Poh.EntryChannelSize,
		"poh.NoService":          _config.Poh.NoService,
		"poh.ServiceAddr":        _config.Poh.ServiceAddr,
		"poh.Store":              _config.Poh.Store,
		"poh.SubmitInterval":     _config.Poh.SubmitInterval,
	}

	if _config.Poh.Store || _config.Poh.Bootstrap {
		logFields["poh.DatabaseDir"] = _config.Poh.DatabaseDir
		logFields["poh.Bootstrap"] = _config.Poh.Bootstrap
	}

	_config.Poh.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/poh.toml (.json, .yaml also work)
	viper.SetConfigName("poh")               // name of config file (without extension)
	viper.AddConfigPath(_config.Poh.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Poh.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Poh.Logger().Debugf("No config file found in: %s", _config.Poh.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
