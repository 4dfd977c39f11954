package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jdhoffa/vpp-sim/config"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Inspect built-in scenarios",
}

var scenariosLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the built-in scenario presets",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range config.PresetNames() {
			cmd.Println(name)
		}
	},
}

func init() {
	scenariosCmd.AddCommand(scenariosLsCmd)
}
