package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/relloyd/billpipe/aws/s3"
	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/gcs"
	"github.com/relloyd/billpipe/logger"
	"github.com/relloyd/billpipe/manifest"
	"github.com/spf13/cobra"
)

// discoveredManifest is the dry-run view of one manifest: what would load and
// from where, without touching the warehouse or the load state.
type discoveredManifest struct {
	Path         string   `json:"path"`
	BillingMonth string   `json:"billingMonth"`
	ExecutionID  string   `json:"executionId"`
	Format       string   `json:"format"`
	DataFileURIs []string `json:"dataFileUris"`
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover billing export manifests without loading anything",
	Long: `Discover billing export manifests without loading anything.

A dry run of the discovery phase: lists the manifests a load would consider,
newest billing month first, with the data file URIs each one resolves to.`,
}

var discoverAWSCmd = &cobra.Command{
	Use:   constants.PipelineAWS,
	Short: "Discover AWS Cost and Usage Report manifests",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscoverAWS()
	},
}

var discoverAzureCmd = &cobra.Command{
	Use:   constants.PipelineAzure,
	Short: "Discover Azure FOCUS billing export manifests",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscoverAzure()
	},
}

// discoverConfig is per provider: each subcommand registers its flags
// against its own copy so config-file defaults for one provider cannot
// bleed into the other.
type discoverConfig struct {
	Bucket     string
	Prefix     string
	ExportName string
	Store      string
	S3Region   string
	LogLevel   string
	Output     string
}

var (
	awsDiscoverCfg   discoverConfig
	azureDiscoverCfg discoverConfig
)

func getDiscoverStore(cfg *discoverConfig) (manifest.ObjectStore, error) {
	switch cfg.Store {
	case constants.StoreTypeGCS:
		return gcs.NewBasicClient(context.Background(), cfg.Bucket)
	case constants.StoreTypeS3:
		if cfg.S3Region == "" {
			return nil, errors.New("please supply a value for the s3-region flag")
		}
		return s3.NewBasicClient(cfg.Bucket, cfg.S3Region), nil
	default:
		return nil, fmt.Errorf("unsupported store %q, use %q or %q", cfg.Store, constants.StoreTypeGCS, constants.StoreTypeS3)
	}
}

func runDiscoverAWS() error {
	cfg := &awsDiscoverCfg
	log := logger.NewLogger("billpipe", cfg.LogLevel, stackDumpOnPanic)
	store, err := getDiscoverStore(cfg)
	if err != nil {
		return err
	}
	manifests, err := manifest.NewDiscovery(log, store).DiscoverAWS(cfg.Prefix)
	if err != nil {
		return err
	}
	out := make([]discoveredManifest, 0, len(manifests))
	for _, m := range manifests {
		format := "csv"
		if m.IsParquet() {
			format = "parquet"
		}
		out = append(out, discoveredManifest{
			Path:         m.Path,
			BillingMonth: m.BillingMonth(),
			ExecutionID:  m.AssemblyID,
			Format:       format,
			DataFileURIs: m.DataFileURIs(cfg.Bucket),
		})
	}
	return printDiscovered(cfg, out)
}

func runDiscoverAzure() error {
	cfg := &azureDiscoverCfg
	log := logger.NewLogger("billpipe", cfg.LogLevel, stackDumpOnPanic)
	if cfg.ExportName == "" {
		return errors.New("please supply a value for the export-name flag")
	}
	store, err := getDiscoverStore(cfg)
	if err != nil {
		return err
	}
	manifests, err := manifest.NewDiscovery(log, store).DiscoverAzure(cfg.Prefix, cfg.ExportName)
	if err != nil {
		return err
	}
	out := make([]discoveredManifest, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, discoveredManifest{
			Path:         m.Path,
			BillingMonth: m.BillingMonth,
			ExecutionID:  m.RunID,
			Format:       "parquet",
			DataFileURIs: m.DataFileURIs(cfg.Bucket),
		})
	}
	return printDiscovered(cfg, out)
}

func printDiscovered(cfg *discoverConfig, manifests []discoveredManifest) error {
	switch cfg.Output {
	case "yaml":
		b, err := yaml.Marshal(manifests)
		if err != nil {
			return err
		}
		fmt.Print(string(b))
	case "json":
		b, err := json.MarshalIndent(manifests, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
	case "":
		if isatty.IsTerminal(os.Stdout.Fd()) { // if a human is watching...
			fmt.Printf("%-10v %-22v %-8v %v\n", "MONTH", "EXECUTION ID", "FORMAT", "FILES")
		}
		for _, m := range manifests {
			fmt.Printf("%-10v %-22v %-8v %v\n", m.BillingMonth, m.ExecutionID, m.Format, len(m.DataFileURIs))
		}
	default:
		return fmt.Errorf("unsupported output format %q, use \"yaml\" or \"json\"", cfg.Output)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.AddCommand(discoverAWSCmd)
	discoverCmd.AddCommand(discoverAzureCmd)
	for _, dc := range []struct {
		cmd *cobra.Command
		cfg *discoverConfig
	}{
		{discoverAWSCmd, &awsDiscoverCfg},
		{discoverAzureCmd, &azureDiscoverCfg},
	} {
		dc.cmd.Flags().SortFlags = false
		name := dc.cmd.Name()
		switches.addFlag(dc.cmd, &dc.cfg.Bucket, "bucket", name, "", true, "")
		switches.addFlag(dc.cmd, &dc.cfg.Prefix, "prefix", name, "", true, "")
		switches.addFlag(dc.cmd, &dc.cfg.Store, "store", "", constants.StoreTypeGCS, false, "")
		switches.addFlag(dc.cmd, &dc.cfg.S3Region, "s3-region", "", "", false, "")
		switches.addFlag(dc.cmd, &dc.cfg.Output, "output", "", "", false, "")
		switches.addFlag(dc.cmd, &dc.cfg.LogLevel, "log-level", "", "warn", false, "")
	}
	switches.addFlag(discoverAzureCmd, &azureDiscoverCfg.ExportName, "export-name", constants.PipelineAzure, "", true, "")
}
