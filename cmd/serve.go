package cmd

import (
	"net"

	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/pipeline"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service and listen for pipeline run triggers",
	Long: `Start a web service and listen for pipeline run triggers.

POST /pipelines/{name}/run starts a load using the configuration from the
main config file. At most one run per pipeline is in flight at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var serveConfig = pipeline.WebServerConfig{
	LogLevel: "info",
	Addr:     net.IP{0, 0, 0, 0},
	Port:     8080,
}

func runServe() error {
	serveConfig.StackDumpOnPanic = stackDumpOnPanic
	awsLoadCfg.StackDumpOnPanic = stackDumpOnPanic
	azureLoadCfg.StackDumpOnPanic = stackDumpOnPanic
	serveConfig.Configs = map[string]*pipeline.Config{
		constants.PipelineAWS:   &awsLoadCfg,
		constants.PipelineAzure: &azureLoadCfg,
	}
	return pipeline.RunWebServer(&serveConfig)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	switches.addFlag(serveCmd, &serveConfig.Port, "port", "", "8080", false, "")
	switches.addFlag(serveCmd, &serveConfig.LogLevel, "log-level", "", "info", false, "")
}
