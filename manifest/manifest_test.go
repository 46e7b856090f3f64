package manifest

import (
	"testing"
	"time"
)

const awsManifestJSON = `{
  "assemblyId": "20250908T093059Z",
  "account": "123456789012",
  "columns": [
    {"category": "identity", "name": "LineItemId", "type": "String"},
    {"category": "lineItem", "name": "UsageStartDate", "type": "DateTime"},
    {"category": "lineItem", "name": "BlendedCost", "type": "BigDecimal"}
  ],
  "charset": "UTF-8",
  "compression": "GZIP",
  "contentType": "text/csv",
  "reportKeys": [
    "CUR/acct/20250901-20251001/20250908T093059Z/acct-1.csv.gz",
    "CUR/acct/20250901-20251001/20250908T093059Z/acct-2.csv.gz"
  ],
  "billingPeriod": {
    "start": "20250901T000000.000Z",
    "end": "20251001T000000.000Z"
  }
}`

func TestParseAWS(t *testing.T) {
	m, err := ParseAWS("gcs-transfer/aws_cur/20250901-20251001/acct-Manifest.json", []byte(awsManifestJSON))
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if m.AssemblyID != "20250908T093059Z" {
		t.Fatal("bad assemblyId: ", m.AssemblyID)
	}
	if m.BillingMonth() != "2025-09" {
		t.Fatal("bad billing month: ", m.BillingMonth())
	}
	if m.IsParquet() {
		t.Fatal("text/csv manifest reported as Parquet")
	}
	if len(m.ReportKeys) != 2 || len(m.Columns) != 3 {
		t.Fatalf("bad report keys or columns: %v %v", m.ReportKeys, m.Columns)
	}
	if m.Path != "gcs-transfer/aws_cur/20250901-20251001/acct-Manifest.json" {
		t.Fatal("bad path: ", m.Path)
	}
}

func TestParseAWSDefaults(t *testing.T) {
	// Old CUR manifests omit compression and contentType.
	data := []byte(`{
      "assemblyId": "a1",
      "reportKeys": ["k/20250901-20251001/a1/f.csv.gz"],
      "billingPeriod": {"start": "20250901T000000.000Z", "end": "20251001T000000.000Z"}
    }`)
	m, err := ParseAWS("p/m.json", data)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if m.Compression != "GZIP" || m.ContentType != "text/csv" {
		t.Fatalf("bad defaults: %v %v", m.Compression, m.ContentType)
	}
}

func TestParseAWSErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"missing assemblyId", `{"reportKeys":["k"],"billingPeriod":{"start":"20250901T000000.000Z"}}`},
		{"missing billingPeriod", `{"assemblyId":"a1","reportKeys":["k"]}`},
		{"missing reportKeys", `{"assemblyId":"a1","billingPeriod":{"start":"20250901T000000.000Z"}}`},
		{"bad timestamp", `{"assemblyId":"a1","reportKeys":["k"],"billingPeriod":{"start":"2025-09-01"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAWS("p/m.json", []byte(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			pe, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("expected ParseError, got %T", err)
			}
			if pe.Path != "p/m.json" {
				t.Fatal("bad path in error: ", pe.Path)
			}
		})
	}
}

const azureManifestJSON = `{
  "manifestVersion": "2024-04-01",
  "byteCount": 1024,
  "blobCount": 2,
  "dataRowCount": 100,
  "runInfo": {
    "executionType": "Scheduled",
    "submittedTime": "2025-10-21T03:49:01.1234567Z",
    "runId": "aa7e4a3c-1111-2222-3333-444455556666",
    "startDate": "2025-10-01T00:00:00",
    "endDate": "2025-10-31T00:00:00"
  },
  "deliveryConfig": {
    "partitionData": true,
    "dataOverwriteBehavior": "CreateNewReport",
    "fileFormat": "Parquet",
    "containerName": "billingdata",
    "rootFolderPath": "billingdata/plotly-billing-focus-cost"
  },
  "blobs": [
    {"blobName": "billingdata/export/20251001-20251031/part_0_0001.snappy.parquet", "byteCount": 512},
    {"blobName": "billingdata/export/20251001-20251031/part_1_0001.snappy.parquet", "byteCount": 512}
  ]
}`

func TestParseAzure(t *testing.T) {
	m, err := ParseAzure("gcs-transfer/azure/billingdata/export/20251001-20251031/202510210349/aa7e/manifest.json", []byte(azureManifestJSON))
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if m.RunID != "aa7e4a3c-1111-2222-3333-444455556666" {
		t.Fatal("bad runId: ", m.RunID)
	}
	if m.BillingMonth != "2025-10" {
		t.Fatal("bad billing month: ", m.BillingMonth)
	}
	if m.FileFormat != "Parquet" {
		t.Fatal("bad file format: ", m.FileFormat)
	}
	if len(m.Blobs) != 2 {
		t.Fatal("bad blobs: ", m.Blobs)
	}
	want := time.Date(2025, 10, 21, 3, 49, 1, 123456700, time.UTC)
	if !m.SubmittedTime.Equal(want) {
		t.Fatalf("bad submittedTime: %v", m.SubmittedTime)
	}
}

func TestParseAzureSubmittedTimeVariants(t *testing.T) {
	// submittedTime arrives with or without a zone designator and with
	// varying fractional-second precision.
	variants := []string{
		"2025-10-21T03:49:01.1234567Z",
		"2025-10-21T03:49:01.123456",
		"2025-10-21T03:49:01Z",
		"2025-10-21T03:49:01",
	}
	for _, v := range variants {
		data := `{
          "runInfo": {"runId": "r1", "startDate": "2025-10-01T00:00:00", "submittedTime": "` + v + `"},
          "deliveryConfig": {"fileFormat": "Parquet"},
          "blobs": [{"blobName": "a/b.parquet"}]
        }`
		if _, err := ParseAzure("p/manifest.json", []byte(data)); err != nil {
			t.Fatalf("variant %q: unexpected error: %v", v, err)
		}
	}
}

func TestParseAzureErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `not json`},
		{"missing runId", `{"runInfo":{"startDate":"2025-10-01T00:00:00","submittedTime":"2025-10-21T03:49:01Z"},"blobs":[{"blobName":"b"}]}`},
		{"missing startDate", `{"runInfo":{"runId":"r1","submittedTime":"2025-10-21T03:49:01Z"},"blobs":[{"blobName":"b"}]}`},
		{"bad startDate", `{"runInfo":{"runId":"r1","startDate":"20251001T000000","submittedTime":"2025-10-21T03:49:01Z"},"blobs":[{"blobName":"b"}]}`},
		{"missing blobs", `{"runInfo":{"runId":"r1","startDate":"2025-10-01T00:00:00","submittedTime":"2025-10-21T03:49:01Z"}}`},
		{"bad submittedTime", `{"runInfo":{"runId":"r1","startDate":"2025-10-01T00:00:00","submittedTime":"yesterday"},"blobs":[{"blobName":"b"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAzure("p/manifest.json", []byte(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			if _, ok := err.(*ParseError); !ok {
				t.Fatalf("expected ParseError, got %T", err)
			}
		})
	}
}
