package constants

const (
	EnvVarPrefix = "BP" // prefix for environment variables in twelveFactorMode

	// Billing period formats.
	TimeFormatBillingMonth  = "2006-01"    // billing month as stored in load state
	TimeFormatPartitionDate = "2006-01-02" // partition values are the first day of the billing month

	// Pipeline names as used on the CLI and in the pipeline registry.
	PipelineAWS   = "aws"
	PipelineAzure = "azure"
	PipelineAll   = "all"

	// Pipeline identifiers used to key persisted load state.
	StateKeyAWS   = "aws_billing"
	StateKeyAzure = "azure_billing"

	// Partitioning and clustering columns per provider.
	AWSPartitionColumn   = "bill_billing_period_start_date"
	AWSClusterColumn     = "line_item_usage_start_date"
	AzurePartitionColumn = "billingperiodstart"
	AzureClusterColumn   = "chargeperiodstart"

	// Warehouse tables that receive per-run metadata rows are named after
	// the billing table plus these suffixes.
	TrackingTableSuffix = "_load_tracking"
	SummaryTableSuffix  = "_run_summary"

	// AWS CUR manifests declare Parquet exports with this contentType.
	ContentTypeParquet = "Parquet"

	// Object store backends for the discover command.
	StoreTypeGCS = "gcs"
	StoreTypeS3  = "s3"
)
