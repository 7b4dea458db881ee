package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for poh
var RootCmd = &cobra.Command{
	Use:              "poh",
	Short:            "Proof-of-History node",
	TraverseChildren: true,
}
