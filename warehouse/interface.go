package warehouse

import (
	"context"
	"fmt"

	"github.com/relloyd/billpipe/schema"
)

// Format of the data files behind a load.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// LoadConfig describes one bulk load of data files into a table.
type LoadConfig struct {
	Format              Format
	Schema              []schema.Field // CSV only; Parquet is self-describing
	SkipLeadingRows     int64
	AllowQuotedNewlines bool
	FieldDelimiter      string
	PartitionField      string
	ClusterFields       []string
	BigNumericTargets   bool // map Parquet decimal columns to BIGNUMERIC
}

// LoadResult reports the outcome of a successful load job.
type LoadResult struct {
	Rows int64
}

// Loader is the warehouse surface the pipelines need: partition replacement,
// bulk loads from object store URIs and row inserts for tracking tables.
type Loader interface {
	TableExists(ctx context.Context, table string) (bool, error)
	// CreateTable creates the table with a schema inferred from the
	// prototype struct. The table must not already exist.
	CreateTable(ctx context.Context, table string, prototype interface{}) error
	// DeletePartition removes all rows where DATE(column) equals value and
	// returns the number of rows deleted. A missing table is not an error.
	DeletePartition(ctx context.Context, table, column, value string) (int64, error)
	LoadFromURIs(ctx context.Context, uris []string, table string, cfg LoadConfig) (*LoadResult, error)
	// Insert streams rows into the table, which must exist already.
	Insert(ctx context.Context, table string, rows interface{}) error
}

// LoadJobError means a load job ran to completion and failed.
type LoadJobError struct {
	Table string
	Err   error
}

func (e *LoadJobError) Error() string {
	return fmt.Sprintf("load job for table %v failed: %v", e.Table, e.Err)
}

func (e *LoadJobError) Unwrap() error {
	return e.Err
}
