package warehouse

import (
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/relloyd/billpipe/schema"
)

func TestFieldsToSchema(t *testing.T) {
	fields := []schema.Field{
		{Name: "line_item_id", Type: "STRING", Nullable: true},
		{Name: "line_item_blended_cost", Type: "BIGNUMERIC", Nullable: true},
		{Name: "line_item_usage_start_date", Type: "TIMESTAMP", Nullable: true},
	}
	s := fieldsToSchema(fields)
	if len(s) != 3 {
		t.Fatalf("expected 3 fields, got %v", len(s))
	}
	if s[0].Name != "line_item_id" || s[0].Type != bigquery.StringFieldType {
		t.Fatalf("bad field 0: %+v", s[0])
	}
	if s[1].Type != bigquery.BigNumericFieldType {
		t.Fatalf("bad field 1: %+v", s[1])
	}
	if s[2].Type != bigquery.TimestampFieldType {
		t.Fatalf("bad field 2: %+v", s[2])
	}
	for _, f := range s {
		if f.Required {
			t.Fatalf("field %v should be nullable", f.Name)
		}
	}
}
