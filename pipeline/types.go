package pipeline

import (
	"time"
)

// Config is the pipeline configuration supplied by the CLI or the web
// trigger. Both providers share the same shape; ExportName is only
// meaningful for Azure, where manifests live under {prefix}/{exportName}/,
// and is validated by RunAzure.
type Config struct {
	Bucket           string `errorTxt:"bucket name" mandatory:"yes" mapstructure:"bucket"`
	Prefix           string `errorTxt:"object prefix" mandatory:"yes" mapstructure:"prefix"`
	ExportName       string `errorTxt:"export name" mandatory:"no" mapstructure:"exportName"`
	TableName        string `errorTxt:"warehouse table name" mandatory:"yes" mapstructure:"tableName"`
	ProjectID        string `errorTxt:"warehouse project id" mandatory:"yes" mapstructure:"projectId"`
	Dataset          string `errorTxt:"warehouse dataset" mandatory:"yes" mapstructure:"dataset"`
	LogLevel         string `errorTxt:"log level" mandatory:"yes" mapstructure:"logLevel"`
	StackDumpOnPanic bool   `mapstructure:"stackDumpOnPanic"`
}

// TrackingRecord is one row appended to the load tracking table per
// completed manifest load.
type TrackingRecord struct {
	ExecutionID  string    `bigquery:"execution_id" json:"execution_id"`
	BillingMonth string    `bigquery:"billing_month" json:"billing_month"`
	LoadedAt     time.Time `bigquery:"loaded_at" json:"loaded_at"`
	RowCount     int64     `bigquery:"row_count" json:"row_count"`
	FileCount    int       `bigquery:"file_count" json:"file_count"`
	Format       string    `bigquery:"format" json:"format"`
}

// RunSummary is the heartbeat row appended to the run summary table at the
// end of every Azure run, including runs where every manifest was skipped.
type RunSummary struct {
	RunID              string    `bigquery:"run_id" json:"run_id"`
	Pipeline           string    `bigquery:"pipeline" json:"pipeline"`
	TotalRows          int64     `bigquery:"total_rows" json:"total_rows"`
	ManifestsProcessed int       `bigquery:"manifests_processed" json:"manifests_processed"`
	ManifestsSkipped   int       `bigquery:"manifests_skipped" json:"manifests_skipped"`
	CompletedAt        time.Time `bigquery:"completed_at" json:"completed_at"`
}

// Sink receives per-load tracking records and end-of-run summaries.
type Sink interface {
	Track(rec TrackingRecord) error
	Summarize(s RunSummary) error
}
