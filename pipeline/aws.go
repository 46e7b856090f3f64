package pipeline

import (
	"context"
	"time"

	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/gcs"
	"github.com/relloyd/billpipe/helper"
	"github.com/relloyd/billpipe/logger"
	"github.com/relloyd/billpipe/manifest"
	"github.com/relloyd/billpipe/state"
	"github.com/relloyd/billpipe/warehouse"
)

// RunAWS discovers AWS CUR manifests in the bucket and loads any new or
// republished billing months into the warehouse table.
func RunAWS(cfg *Config) error {
	log := logger.NewLogger("billpipe", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	ctx := context.Background()
	store, err := gcs.NewBasicClient(ctx, cfg.Bucket)
	if err != nil {
		return err
	}
	wh, err := warehouse.NewClient(ctx, log, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		return err
	}
	defer wh.Close()
	stateStore, err := state.NewFileStore()
	if err != nil {
		return err
	}
	return runAWS(ctx, log, cfg, store, wh, stateStore, newWarehouseSink(ctx, wh, cfg.TableName))
}

func runAWS(
	ctx context.Context,
	log logger.Logger,
	cfg *Config,
	store manifest.ObjectStore,
	wh warehouse.Loader,
	stateStore state.Store,
	sink Sink,
) error {
	manifests, err := manifest.NewDiscovery(log, store).DiscoverAWS(cfg.Prefix)
	if err != nil {
		return err
	}
	st, err := stateStore.LoadState(constants.StateKeyAWS, cfg.TableName)
	if err != nil {
		return err
	}
	tracker := state.NewTracker(log, st)
	var runErr error
	for _, m := range manifests {
		month := m.BillingMonth()
		if !tracker.ShouldLoad(month, m.AssemblyID) {
			log.Info("skipping ", month, " (assemblyId: ", m.AssemblyID, "), already loaded")
			continue
		}
		if err := loadAWSManifest(ctx, log, cfg, wh, m, tracker, sink); err != nil {
			runErr = err
			break
		}
	}
	// Save state even after a failure so months committed earlier in the run
	// are not reloaded next time.
	if err := stateStore.SaveState(constants.StateKeyAWS, cfg.TableName, tracker.State()); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			log.Error("unable to save state: ", err)
		}
	}
	return runErr
}

// loadAWSManifest replaces the manifest's billing month in the warehouse:
// delete the partition, bulk load the manifest's data files, then commit the
// month in the tracker and emit a tracking record.
func loadAWSManifest(
	ctx context.Context,
	log logger.Logger,
	cfg *Config,
	wh warehouse.Loader,
	m *manifest.AWS,
	tracker *state.Tracker,
	sink Sink,
) error {
	month := m.BillingMonth()
	log.Info("processing ", month, " (assemblyId: ", m.AssemblyID, ")")
	if _, err := wh.DeletePartition(ctx, cfg.TableName, constants.AWSPartitionColumn, month+"-01"); err != nil {
		return err
	}
	uris := m.DataFileURIs(cfg.Bucket)
	loadCfg := warehouse.LoadConfig{
		PartitionField: constants.AWSPartitionColumn,
		ClusterFields:  []string{constants.AWSClusterColumn},
	}
	format := "csv"
	if m.IsParquet() { // if the export is Parquet, the schema is in the files...
		loadCfg.Format = warehouse.FormatParquet
		format = "parquet"
	} else {
		loadCfg.Format = warehouse.FormatCSV
		loadCfg.Schema = m.Columns.Fields()
		loadCfg.SkipLeadingRows = 1
		loadCfg.AllowQuotedNewlines = true
		loadCfg.FieldDelimiter = ","
	}
	log.Info("loading ", len(uris), " ", format, " files...")
	logDataFileURIs(log, uris)
	res, err := wh.LoadFromURIs(ctx, uris, cfg.TableName, loadCfg)
	if err != nil {
		return err
	}
	log.Info("loaded ", res.Rows, " rows into ", cfg.TableName)
	now := time.Now().UTC()
	tracker.RecordLoaded(month, m.AssemblyID, now)
	return sink.Track(TrackingRecord{
		ExecutionID:  m.AssemblyID,
		BillingMonth: month,
		LoadedAt:     now,
		RowCount:     res.Rows,
		FileCount:    len(uris),
		Format:       format,
	})
}

func logDataFileURIs(log logger.Logger, uris []string) {
	for i, uri := range uris {
		if i == 5 {
			log.Info("  ... and ", len(uris)-5, " more")
			break
		}
		log.Info("  ", uri)
	}
}
