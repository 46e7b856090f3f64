package pipeline

import (
	"context"

	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/warehouse"
)

// warehouseSink writes tracking and summary rows to side tables next to the
// billing table: <table>_load_tracking and <table>_run_summary.
// The side tables are created on first use so a fresh deployment can run
// without any manual table setup.
type warehouseSink struct {
	ctx       context.Context
	wh        warehouse.Loader
	tableName string
	ensured   map[string]bool // side tables known to exist
}

func newWarehouseSink(ctx context.Context, wh warehouse.Loader, tableName string) *warehouseSink {
	return &warehouseSink{ctx: ctx, wh: wh, tableName: tableName, ensured: map[string]bool{}}
}

// ensureTable creates table from the prototype's schema unless it already
// exists. Inserts are streaming writes and fail hard on a missing table.
func (s *warehouseSink) ensureTable(table string, prototype interface{}) error {
	if s.ensured[table] {
		return nil
	}
	exists, err := s.wh.TableExists(s.ctx, table)
	if err != nil {
		return err
	}
	if !exists { // if this is the first ever run against this dataset...
		if err := s.wh.CreateTable(s.ctx, table, prototype); err != nil {
			return err
		}
	}
	s.ensured[table] = true
	return nil
}

func (s *warehouseSink) Track(rec TrackingRecord) error {
	table := s.tableName + constants.TrackingTableSuffix
	if err := s.ensureTable(table, TrackingRecord{}); err != nil {
		return err
	}
	return s.wh.Insert(s.ctx, table, []TrackingRecord{rec})
}

func (s *warehouseSink) Summarize(sum RunSummary) error {
	table := s.tableName + constants.SummaryTableSuffix
	if err := s.ensureTable(table, RunSummary{}); err != nil {
		return err
	}
	return s.wh.Insert(s.ctx, table, []RunSummary{sum})
}

// memorySink collects records for tests.
type memorySink struct {
	tracked   []TrackingRecord
	summaries []RunSummary
}

func (s *memorySink) Track(rec TrackingRecord) error {
	s.tracked = append(s.tracked, rec)
	return nil
}

func (s *memorySink) Summarize(sum RunSummary) error {
	s.summaries = append(s.summaries, sum)
	return nil
}
