package cmd

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2026-01-02T03:04+0000"
	osArch           = "linux"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use: "bp",
	Long: `Billpipe loads cloud billing exports into a warehouse.

It discovers AWS Cost and Usage Report and Azure FOCUS export manifests in a
bucket, works out which billing months are new or have been republished, and
replaces those months in the warehouse with idempotent partition loads.
Run it from the CLI, from an HTTP trigger via 'serve', or hands-free in
12-factor mode using environment variables.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func() error { return execute12FactorMode(twelveFactorActions) })
		} else {
			if err := execute12FactorMode(twelveFactorActions); err != nil {
				// execute12FactorMode prints the error.
				os.Exit(1)
			}
		}
	} else { // else we're using CLI args and flags via Cobra...
		if err := rootCmd.Execute(); err != nil {
			// Execute() prints the error.
			os.Exit(1)
		}
	}
}
