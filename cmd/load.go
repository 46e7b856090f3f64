package cmd

import (
	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/logger"
	"github.com/relloyd/billpipe/pipeline"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load billing exports into the warehouse",
	Long: `Load billing exports into the warehouse.

Discovers export manifests in the bucket, skips billing months that are
already loaded and replaces months whose exports were republished. Safe to
run repeatedly: each month is delete-then-load so reruns never duplicate
rows.`,
}

var loadAWSCmd = &cobra.Command{
	Use:   constants.PipelineAWS,
	Short: "Load AWS Cost and Usage Report exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoadAWS()
	},
}

var loadAzureCmd = &cobra.Command{
	Use:   constants.PipelineAzure,
	Short: "Load Azure FOCUS billing exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoadAzure()
	},
}

var loadAllCmd = &cobra.Command{
	Use:   constants.PipelineAll,
	Short: "Load every configured pipeline, continuing past failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoadAll()
	},
}

var (
	awsLoadCfg   pipeline.Config
	azureLoadCfg pipeline.Config
)

func runLoadAWS() error {
	awsLoadCfg.StackDumpOnPanic = stackDumpOnPanic
	return pipeline.Run(constants.PipelineAWS, &awsLoadCfg)
}

func runLoadAzure() error {
	azureLoadCfg.StackDumpOnPanic = stackDumpOnPanic
	return pipeline.Run(constants.PipelineAzure, &azureLoadCfg)
}

// runLoadAll runs every pipeline that has configuration, so one provider's
// failure cannot block the other provider's loads.
func runLoadAll() error {
	awsLoadCfg.StackDumpOnPanic = stackDumpOnPanic
	azureLoadCfg.StackDumpOnPanic = stackDumpOnPanic
	cfgs := map[string]*pipeline.Config{}
	if awsLoadCfg.Bucket != "" { // if the aws section is configured...
		cfgs[constants.PipelineAWS] = &awsLoadCfg
	}
	if azureLoadCfg.Bucket != "" {
		cfgs[constants.PipelineAzure] = &azureLoadCfg
	}
	log := logger.NewLogger("billpipe", awsLoadCfg.LogLevel, stackDumpOnPanic)
	return pipeline.RunAll(log, cfgs)
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.AddCommand(loadAWSCmd)
	loadCmd.AddCommand(loadAzureCmd)
	loadCmd.AddCommand(loadAllCmd)
	for _, c := range []*cobra.Command{loadAWSCmd, loadAzureCmd, loadAllCmd} {
		c.Flags().SortFlags = false
	}
	// AWS flags default from the "aws" config section.
	switches.addFlag(loadAWSCmd, &awsLoadCfg.Bucket, "bucket", constants.PipelineAWS, "", true, "")
	switches.addFlag(loadAWSCmd, &awsLoadCfg.Prefix, "prefix", constants.PipelineAWS, "", true, "")
	switches.addFlag(loadAWSCmd, &awsLoadCfg.TableName, "table-name", constants.PipelineAWS, "", true, "")
	switches.addFlag(loadAWSCmd, &awsLoadCfg.ProjectID, "project-id", constants.PipelineAWS, "", true, "")
	switches.addFlag(loadAWSCmd, &awsLoadCfg.Dataset, "dataset", constants.PipelineAWS, "", true, "")
	switches.addFlag(loadAWSCmd, &awsLoadCfg.LogLevel, "log-level", "", "info", false, "")
	// Azure flags default from the "azure" config section.
	switches.addFlag(loadAzureCmd, &azureLoadCfg.Bucket, "bucket", constants.PipelineAzure, "", true, "")
	switches.addFlag(loadAzureCmd, &azureLoadCfg.Prefix, "prefix", constants.PipelineAzure, "", true, "")
	switches.addFlag(loadAzureCmd, &azureLoadCfg.ExportName, "export-name", constants.PipelineAzure, "", true, "")
	switches.addFlag(loadAzureCmd, &azureLoadCfg.TableName, "table-name", constants.PipelineAzure, "", true, "")
	switches.addFlag(loadAzureCmd, &azureLoadCfg.ProjectID, "project-id", constants.PipelineAzure, "", true, "")
	switches.addFlag(loadAzureCmd, &azureLoadCfg.Dataset, "dataset", constants.PipelineAzure, "", true, "")
	switches.addFlag(loadAzureCmd, &azureLoadCfg.LogLevel, "log-level", "", "info", false, "")
}
