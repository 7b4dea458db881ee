package commands

import (
	"github.com/mosaicnetworks/poh/src/config"
)

//CLIConfig contains configuration for the Run command
type CLIConfig struct {
	Poh config.Config `mapstructure:",squash"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Poh: *config.NewDefaultConfig(),
	}
}
