package pipeline

import (
	"context"
	"testing"

	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/state"
	"github.com/relloyd/billpipe/warehouse"
)

func azureManifestJSON(runID, startDate, submitted string) []byte {
	return []byte(`{
      "runInfo": {"runId": "` + runID + `", "startDate": "` + startDate + `", "submittedTime": "` + submitted + `"},
      "deliveryConfig": {"fileFormat": "Parquet"},
      "blobs": [{"blobName": "billingdata/export/x/part_0_0001.snappy.parquet"}]
    }`)
}

func testAzureConfig() *Config {
	return &Config{
		Bucket:     "bucket",
		Prefix:     "gcs-transfer/azure/billingdata",
		ExportName: "export",
		TableName:  "azure_billing_data",
		ProjectID:  "proj",
		Dataset:    "billing",
		LogLevel:   "error",
	}
}

func TestRunAzureLoadsLatestRunPerMonth(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{
		"gcs-transfer/azure/billingdata/export/20251001-20251031/202510050100/aa11/manifest.json": azureManifestJSON("aa11", "2025-10-01T00:00:00", "2025-10-05T01:00:00Z"),
		"gcs-transfer/azure/billingdata/export/20251001-20251031/202510210349/bb22/manifest.json": azureManifestJSON("bb22", "2025-10-01T00:00:00", "2025-10-21T03:49:00Z"),
	}}
	wh := warehouse.NewMockLoader()
	sink := &memorySink{}
	cfg := testAzureConfig()

	if err := runAzure(context.Background(), testLog, cfg, store, wh, state.NewMemStore(), sink); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	// Only the latest export run for the month loads.
	if len(wh.Loads) != 1 {
		t.Fatalf("expected 1 load, got %v", len(wh.Loads))
	}
	load := wh.Loads[0]
	if load.Config.Format != warehouse.FormatParquet || !load.Config.BigNumericTargets {
		t.Fatalf("bad load config: %+v", load.Config)
	}
	if load.Config.PartitionField != constants.AzurePartitionColumn {
		t.Fatal("bad partition field: ", load.Config.PartitionField)
	}
	if len(sink.tracked) != 1 || sink.tracked[0].ExecutionID != "bb22" {
		t.Fatalf("bad tracking records: %+v", sink.tracked)
	}
	if len(sink.summaries) != 1 {
		t.Fatalf("expected a run summary, got %v", sink.summaries)
	}
	sum := sink.summaries[0]
	if sum.Pipeline != constants.PipelineAzure || sum.ManifestsProcessed != 1 || sum.ManifestsSkipped != 0 {
		t.Fatalf("bad summary: %+v", sum)
	}
	if sum.RunID == "" {
		t.Fatal("summary must carry a run id")
	}
}

func TestRunAzureSummaryEmittedWhenAllSkipped(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{
		"gcs-transfer/azure/billingdata/export/20251001-20251031/202510210349/bb22/manifest.json": azureManifestJSON("bb22", "2025-10-01T00:00:00", "2025-10-21T03:49:00Z"),
	}}
	wh := warehouse.NewMockLoader()
	stateStore := state.NewMemStore()
	sink := &memorySink{}
	cfg := testAzureConfig()

	if err := runAzure(context.Background(), testLog, cfg, store, wh, stateStore, sink); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if err := runAzure(context.Background(), testLog, cfg, store, wh, stateStore, sink); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if len(wh.Loads) != 1 {
		t.Fatalf("expected no new loads on second run, got %v", len(wh.Loads))
	}
	// The second run skipped everything but still wrote its heartbeat.
	if len(sink.summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %v", len(sink.summaries))
	}
	sum := sink.summaries[1]
	if sum.ManifestsProcessed != 0 || sum.ManifestsSkipped != 1 || sum.TotalRows != 0 {
		t.Fatalf("bad all-skipped summary: %+v", sum)
	}
}
