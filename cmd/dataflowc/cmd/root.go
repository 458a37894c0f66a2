package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ucb-cyarp/dataflowc/pkg/utils"
)

var (
	verbose bool
	logger  utils.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "dataflowc",
	Short: "A dataflow-graph IR compiler driver",
	Long: `dataflowc drives the dataflow-graph compiler's pass pipeline over a
Design: expansion of high-level nodes, partition-crossing FIFO insertion,
delay absorption, reshaping, FIFO merging, partition propagation and
validation.

This is a development harness for exercising the pipeline against a
fixture, not a production front-end — it does not import GraphML.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
