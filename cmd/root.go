package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "practice-service",
	Short: "Adaptive language practice API",
	Long:  "practice-service generates language exercises at the learner's level, evaluates answers and tracks progress.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ensureIndexesCmd)
}
