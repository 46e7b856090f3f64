package manifest

import (
	"reflect"
	"testing"
)

func TestAWSDataFileURIsCSV(t *testing.T) {
	m := &AWS{
		ContentType: "text/csv",
		Path:        "a/b/20250101-20250201/x-Manifest.json",
		ReportKeys: []string{
			"CUR/acct/20250101-20250201/EXEC123/part0.csv.gz",
			"CUR/acct/20250101-20250201/EXEC123/part1.csv.gz",
		},
	}
	got := m.DataFileURIs("BUCKET")
	want := []string{
		"gs://BUCKET/a/b/20250101-20250201/EXEC123/part0.csv.gz",
		"gs://BUCKET/a/b/20250101-20250201/EXEC123/part1.csv.gz",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAWSDataFileURIsParquet(t *testing.T) {
	// Parquet data files live beside the date-range directory, keyed by the
	// Hive partition path, so the base is the manifest's grandparent dir.
	m := &AWS{
		ContentType: "Parquet",
		Path:        "gcs-transfer/aws/export/20251101-20251201/export-Manifest.json",
		ReportKeys: []string{
			"billing/aws-billing-cur/export/export/year=2025/month=11/f1.snappy.parquet",
		},
	}
	got := m.DataFileURIs("BUCKET")
	want := []string{
		"gs://BUCKET/gcs-transfer/aws/export/export/year=2025/month=11/f1.snappy.parquet",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAWSDataFileURIsShortKeyFallsBackToFilename(t *testing.T) {
	m := &AWS{
		ContentType: "text/csv",
		Path:        "a/20250101-20250201/x-Manifest.json",
		ReportKeys:  []string{"part0.csv.gz"},
	}
	got := m.DataFileURIs("BUCKET")
	want := []string{"gs://BUCKET/a/20250101-20250201/part0.csv.gz"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAzureDataFileURIs(t *testing.T) {
	// Azure blobName paths are rooted at the storage container, not at the
	// transfer destination. Only the filename is trusted.
	m := &Azure{
		Path: "gcs-transfer/azure/billingdata/export/20251001-20251031/202510210349/aa11/manifest.json",
		Blobs: []AzureBlob{
			{Name: "billingdata/export/20251001-20251031/part_0_0001.snappy.parquet"},
			{Name: "billingdata/export/20251001-20251031/part_1_0001.snappy.parquet"},
		},
	}
	got := m.DataFileURIs("BUCKET")
	want := []string{
		"gs://BUCKET/gcs-transfer/azure/billingdata/export/20251001-20251031/202510210349/aa11/part_0_0001.snappy.parquet",
		"gs://BUCKET/gcs-transfer/azure/billingdata/export/20251001-20251031/202510210349/aa11/part_1_0001.snappy.parquet",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
