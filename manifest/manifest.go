package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/schema"
)

// awsTimestampFormat is the timestamp format used by CUR manifest billing
// periods, e.g. "20250901T000000.000Z".
const awsTimestampFormat = "20060102T150405.000Z"

// azureSubmittedTimeLayouts cover the submittedTime variants seen in Azure
// export manifests: the zone designator is optional and Go accepts any
// fractional-second precision after the seconds field when parsing.
var azureSubmittedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseError means a discovered manifest could not be decoded or failed
// validation. Parse failures are fatal to a run: a manifest we cannot read
// is a manifest we cannot safely skip.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed manifest %v: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Time wraps time.Time to decode the CUR manifest timestamp format.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(awsTimestampFormat, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// BillingPeriod is the date range covered by a CUR manifest.
type BillingPeriod struct {
	Start Time `json:"start"`
	End   Time `json:"end"`
}

// AWS is a parsed AWS Cost and Usage Report manifest.
type AWS struct {
	AssemblyID    string         `json:"assemblyId"`
	BillingPeriod BillingPeriod  `json:"billingPeriod"`
	ReportKeys    []string       `json:"reportKeys"`
	Columns       schema.Columns `json:"columns"`
	Compression   string         `json:"compression"`
	ContentType   string         `json:"contentType"`
	Path          string         `json:"-"`
}

// BillingMonth returns the covered month in YYYY-MM form.
func (m *AWS) BillingMonth() string {
	return m.BillingPeriod.Start.Format(constants.TimeFormatBillingMonth)
}

// BillingDate returns the start of the covered billing period.
func (m *AWS) BillingDate() time.Time {
	return m.BillingPeriod.Start.Time
}

// IsParquet reports whether the export was written in Parquet rather than
// gzipped CSV. CUR sets contentType to "Parquet" for Parquet exports.
func (m *AWS) IsParquet() bool {
	return m.ContentType == constants.ContentTypeParquet
}

// ParseAWS decodes and validates a CUR manifest fetched from path.
// Missing compression and contentType fields default to the values CUR used
// before those fields existed.
func ParseAWS(path string, data []byte) (*AWS, error) {
	m := &AWS{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if m.AssemblyID == "" {
		return nil, &ParseError{Path: path, Err: errors.New("missing assemblyId")}
	}
	if m.BillingPeriod.Start.IsZero() {
		return nil, &ParseError{Path: path, Err: errors.New("missing billingPeriod.start")}
	}
	if len(m.ReportKeys) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("missing reportKeys")}
	}
	if m.Compression == "" { // if the manifest predates the compression field...
		m.Compression = "GZIP"
	}
	if m.ContentType == "" {
		m.ContentType = "text/csv"
	}
	m.Path = path
	return m, nil
}

// AzureBlob is one data file reference inside an Azure export manifest.
type AzureBlob struct {
	Name string `json:"blobName"`
}

// Azure is a parsed Azure billing export manifest.
type Azure struct {
	RunID         string
	BillingMonth  string // YYYY-MM
	SubmittedTime time.Time
	FileFormat    string
	Blobs         []AzureBlob
	Path          string
}

// BillingDate returns the start of the covered billing month.
func (m *Azure) BillingDate() time.Time {
	t, _ := time.Parse(constants.TimeFormatBillingMonth, m.BillingMonth)
	return t
}

// azureRaw matches the wire shape of an Azure export manifest. Only the
// fields the pipeline uses are decoded.
type azureRaw struct {
	RunInfo struct {
		RunID         string `json:"runId"`
		StartDate     string `json:"startDate"`
		SubmittedTime string `json:"submittedTime"`
	} `json:"runInfo"`
	DeliveryConfig struct {
		FileFormat string `json:"fileFormat"`
	} `json:"deliveryConfig"`
	Blobs []AzureBlob `json:"blobs"`
}

// ParseAzure decodes and validates an Azure export manifest fetched from path.
func ParseAzure(path string, data []byte) (*Azure, error) {
	var raw azureRaw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if raw.RunInfo.RunID == "" {
		return nil, &ParseError{Path: path, Err: errors.New("missing runInfo.runId")}
	}
	if len(raw.RunInfo.StartDate) < 7 {
		return nil, &ParseError{Path: path, Err: errors.New("missing runInfo.startDate")}
	}
	month := raw.RunInfo.StartDate[:7]
	if _, err := time.Parse(constants.TimeFormatBillingMonth, month); err != nil {
		return nil, &ParseError{Path: path, Err: errors.Wrap(err, "bad runInfo.startDate")}
	}
	if len(raw.Blobs) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("missing blobs")}
	}
	submitted, err := parseSubmittedTime(raw.RunInfo.SubmittedTime)
	if err != nil {
		return nil, &ParseError{Path: path, Err: errors.Wrap(err, "bad runInfo.submittedTime")}
	}
	return &Azure{
		RunID:         raw.RunInfo.RunID,
		BillingMonth:  month,
		SubmittedTime: submitted,
		FileFormat:    raw.DeliveryConfig.FileFormat,
		Blobs:         raw.Blobs,
		Path:          path,
	}, nil
}

func parseSubmittedTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range azureSubmittedTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
