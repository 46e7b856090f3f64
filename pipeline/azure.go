package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/gcs"
	"github.com/relloyd/billpipe/helper"
	"github.com/relloyd/billpipe/logger"
	"github.com/relloyd/billpipe/manifest"
	"github.com/relloyd/billpipe/state"
	"github.com/relloyd/billpipe/warehouse"
	"github.com/rs/xid"
)

// RunAzure discovers Azure billing export manifests in the bucket and loads
// any new or re-exported billing months into the warehouse table.
func RunAzure(cfg *Config) error {
	log := logger.NewLogger("billpipe", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if cfg.ExportName == "" {
		return errors.New("please supply a value for the export name")
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
	return runAzure(ctx, log, cfg, store, wh, stateStore, newWarehouseSink(ctx, wh, cfg.TableName))
}

func runAzure(
	ctx context.Context,
	log logger.Logger,
	cfg *Config,
	store manifest.ObjectStore,
	wh warehouse.Loader,
	stateStore state.Store,
	sink Sink,
) error {
	runID := xid.New().String()
	manifests, err := manifest.NewDiscovery(log, store).DiscoverAzure(cfg.Prefix, cfg.ExportName)
	if err != nil {
		return err
	}
	st, err := stateStore.LoadState(constants.StateKeyAzure, cfg.TableName)
	if err != nil {
		return err
	}
	tracker := state.NewTracker(log, st)
	var runErr error
	var totalRows int64
	processed, skipped := 0, 0
	for _, m := range manifests {
		if !tracker.ShouldLoad(m.BillingMonth, m.RunID) {
			log.Info("skipping ", m.BillingMonth, " (runId: ", m.RunID, "), already loaded")
			skipped++
			continue
		}
		rows, err := loadAzureManifest(ctx, log, cfg, wh, m, tracker, sink)
		if err != nil {
			runErr = err
			break
		}
		totalRows += rows
		processed++
	}
	// The summary row is the run's heartbeat: emit it even when every
	// manifest was skipped or a load failed part-way.
	if err := sink.Summarize(RunSummary{
		RunID:              runID,
		Pipeline:           constants.PipelineAzure,
		TotalRows:          totalRows,
		ManifestsProcessed: processed,
		ManifestsSkipped:   skipped,
		CompletedAt:        time.Now().UTC(),
	}); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			log.Error("unable to write run summary: ", err)
		}
	}
	if err := stateStore.SaveState(constants.StateKeyAzure, cfg.TableName, tracker.State()); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			log.Error("unable to save state: ", err)
		}
	}
	return runErr
}

func loadAzureManifest(
	ctx context.Context,
	log logger.Logger,
	cfg *Config,
	wh warehouse.Loader,
	m *manifest.Azure,
	tracker *state.Tracker,
	sink Sink,
) (int64, error) {
	month := m.BillingMonth
	log.Info("processing ", month, " (runId: ", m.RunID, ")")
	if _, err := wh.DeletePartition(ctx, cfg.TableName, constants.AzurePartitionColumn, month+"-01"); err != nil {
		return 0, err
	}
	uris := m.DataFileURIs(cfg.Bucket)
	log.Info("loading ", len(uris), " parquet files...")
	logDataFileURIs(log, uris)
	// Azure FOCUS cost columns are decimal128(38,18); map them to BIGNUMERIC.
	res, err := wh.LoadFromURIs(ctx, uris, cfg.TableName, warehouse.LoadConfig{
		Format:            warehouse.FormatParquet,
		PartitionField:    constants.AzurePartitionColumn,
		ClusterFields:     []string{constants.AzureClusterColumn},
		BigNumericTargets: true,
	})
	if err != nil {
		return 0, err
	}
	log.Info("loaded ", res.Rows, " rows into ", cfg.TableName)
	now := time.Now().UTC()
	tracker.RecordLoaded(month, m.RunID, now)
	err = sink.Track(TrackingRecord{
		ExecutionID:  m.RunID,
		BillingMonth: month,
		LoadedAt:     now,
		RowCount:     res.Rows,
		FileCount:    len(uris),
		Format:       "parquet",
	})
	return res.Rows, err
}
