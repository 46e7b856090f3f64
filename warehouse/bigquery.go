package warehouse

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/pkg/errors"
	"github.com/relloyd/billpipe/logger"
	"github.com/relloyd/billpipe/schema"
	"google.golang.org/api/googleapi"
)

// Client implements Loader against a BigQuery dataset.
type Client struct {
	log     logger.Logger
	bq      *bigquery.Client
	project string
	dataset string
}

func NewClient(ctx context.Context, log logger.Logger, project, dataset string) (*Client, error) {
	bq, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create BigQuery client")
	}
	return &Client{log: log, bq: bq, project: project, dataset: dataset}, nil
}

func (c *Client) Close() error {
	return c.bq.Close()
}

func (c *Client) tableID(table string) string {
	return fmt.Sprintf("%s.%s.%s", c.project, c.dataset, table)
}

func (c *Client) TableExists(ctx context.Context, table string) (bool, error) {
	_, err := c.bq.Dataset(c.dataset).Table(table).Metadata(ctx)
	if err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 404 {
			return false, nil
		}
		return false, errors.Wrapf(err, "unable to fetch metadata for table %v", table)
	}
	return true, nil
}

func (c *Client) CreateTable(ctx context.Context, table string, prototype interface{}) error {
	s, err := bigquery.InferSchema(prototype)
	if err != nil {
		return errors.Wrapf(err, "unable to infer a schema for table %v", table)
	}
	if err := c.bq.Dataset(c.dataset).Table(table).Create(ctx, &bigquery.TableMetadata{Schema: s}); err != nil {
		return errors.Wrapf(err, "unable to create table %v", table)
	}
	c.log.Info("created table ", table)
	return nil
}

// DeletePartition removes all rows in the partition via DELETE rather than a
// partition drop. When the DELETE covers a whole partition BigQuery removes
// it without scanning bytes.
func (c *Client) DeletePartition(ctx context.Context, table, column, value string) (int64, error) {
	exists, err := c.TableExists(ctx, table)
	if err != nil {
		return 0, err
	}
	if !exists { // if this is the table's first ever load...
		c.log.Info("table ", table, " does not exist yet, skipping partition deletion")
		return 0, nil
	}
	q := c.bq.Query(fmt.Sprintf(
		"DELETE FROM `%s` WHERE DATE(%s) = '%s'",
		c.tableID(table), column, value))
	job, err := q.Run(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to start partition delete on table %v", table)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to wait for partition delete on table %v", table)
	}
	if err := status.Err(); err != nil {
		return 0, errors.Wrapf(err, "partition delete on table %v failed", table)
	}
	var deleted int64
	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		deleted = stats.NumDMLAffectedRows
	}
	c.log.Info("deleted ", deleted, " rows from partition ", value, " of table ", table)
	return deleted, nil
}

func (c *Client) LoadFromURIs(ctx context.Context, uris []string, table string, cfg LoadConfig) (*LoadResult, error) {
	gcsRef := bigquery.NewGCSReference(uris...)
	switch cfg.Format {
	case FormatParquet:
		gcsRef.SourceFormat = bigquery.Parquet
	default:
		gcsRef.SourceFormat = bigquery.CSV
		gcsRef.SkipLeadingRows = cfg.SkipLeadingRows
		gcsRef.AllowQuotedNewlines = cfg.AllowQuotedNewlines
		gcsRef.FieldDelimiter = cfg.FieldDelimiter
		gcsRef.Schema = fieldsToSchema(cfg.Schema)
	}

	loader := c.bq.Dataset(c.dataset).Table(table).LoaderFrom(gcsRef)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.SchemaUpdateOptions = []string{"ALLOW_FIELD_ADDITION"}
	if cfg.PartitionField != "" {
		loader.TimePartitioning = &bigquery.TimePartitioning{
			Type:  bigquery.MonthPartitioningType,
			Field: cfg.PartitionField,
		}
	}
	if len(cfg.ClusterFields) > 0 {
		loader.Clustering = &bigquery.Clustering{Fields: cfg.ClusterFields}
	}
	if cfg.BigNumericTargets {
		loader.DecimalTargetTypes = []bigquery.DecimalTargetType{bigquery.BigNumericTargetType}
	}

	job, err := loader.Run(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to start load job for table %v", table)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to wait for load job for table %v", table)
	}
	if err := status.Err(); err != nil {
		return nil, &LoadJobError{Table: table, Err: err}
	}
	res := &LoadResult{}
	if stats, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
		res.Rows = stats.OutputRows
	}
	return res, nil
}

func (c *Client) Insert(ctx context.Context, table string, rows interface{}) error {
	ins := c.bq.Dataset(c.dataset).Table(table).Inserter()
	if err := ins.Put(ctx, rows); err != nil {
		return errors.Wrapf(err, "unable to insert rows into table %v", table)
	}
	return nil
}

func fieldsToSchema(fields []schema.Field) bigquery.Schema {
	out := make(bigquery.Schema, 0, len(fields))
	for _, f := range fields {
		out = append(out, &bigquery.FieldSchema{
			Name:     f.Name,
			Type:     bigquery.FieldType(f.Type),
			Required: !f.Nullable,
		})
	}
	return out
}
