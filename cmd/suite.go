package main

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved suite as YAML",
	Long: `Prints the suite after applying --config, RANDOPT_* environment
variables and flags. The output is a valid config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, err := loadSuite(cmd)
		if err != nil {
			return err
		}
		return suite.Encode(cmd.OutOrStdout())
	},
}

func init() {
	addSuiteFlags(configCmd.Flags())
	rootCmd.AddCommand(configCmd)
}
