package manifest

import (
	"regexp"
	"sort"
	"strings"

	"github.com/relloyd/billpipe/logger"
)

//go:generate mockgen -package mocks -destination mocks/objectstore.go -source=discovery.go

// ObjectStore lists and fetches objects from a cloud bucket.
// Implementations exist for GCS and S3.
type ObjectStore interface {
	List(prefix string) ([]string, error)
	Get(key string) ([]byte, error)
}

// Discovery finds and parses billing export manifests in an object store.
type Discovery struct {
	log   logger.Logger
	store ObjectStore
}

func NewDiscovery(log logger.Logger, store ObjectStore) *Discovery {
	return &Discovery{log: log, store: store}
}

// DiscoverAWS finds CUR manifests under prefix and returns them parsed,
// newest billing period first.
//
// CUR writes a top-level manifest per billing period at
// {prefix}/YYYYMMDD-YYYYMMDD/{report}-Manifest.json and a copy inside each
// assembly subdirectory. Only the top-level one is authoritative, so the
// pattern rejects keys with extra path segments after the date range.
func (d *Discovery) DiscoverAWS(prefix string) ([]*AWS, error) {
	pattern := regexp.MustCompile(
		"^" + regexp.QuoteMeta(strings.TrimRight(prefix, "/")) +
			`/\d{8}-\d{8}/[^/]*-Manifest\.json$`)
	keys, err := d.store.List(prefix)
	if err != nil {
		return nil, err
	}
	var manifests []*AWS
	for _, key := range keys {
		if !pattern.MatchString(key) {
			continue
		}
		data, err := d.store.Get(key)
		if err != nil {
			return nil, err
		}
		m, err := ParseAWS(key, data)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	// Stable so manifests sharing a billing month stay in listing order,
	// which decides whose execution id the load state ends up holding.
	sort.SliceStable(manifests, func(i, j int) bool {
		return manifests[i].BillingDate().After(manifests[j].BillingDate())
	})
	d.log.Info("discovered ", len(manifests), " AWS CUR manifests under ", prefix)
	return manifests, nil
}

// DiscoverAzure finds Azure export manifests under {prefix}/{exportName} and
// returns them parsed, newest billing month first.
//
// Azure writes one manifest per export run at
// {prefix}/{export}/YYYYMMDD-YYYYMMDD/YYYYMMDDHHmm/{runId}/manifest.json and
// re-exports the current month repeatedly, so multiple runs exist per month.
// Only the run with the latest submittedTime per month is kept.
func (d *Discovery) DiscoverAzure(prefix, exportName string) ([]*Azure, error) {
	pattern := regexp.MustCompile(
		"^" + regexp.QuoteMeta(strings.TrimRight(prefix, "/")) + "/" + regexp.QuoteMeta(exportName) +
			`/\d{8}-\d{8}/\d{12}/[a-f0-9\-]+/manifest\.json$`)
	keys, err := d.store.List(strings.TrimRight(prefix, "/") + "/" + exportName + "/")
	if err != nil {
		return nil, err
	}
	best := map[string]*Azure{}
	for _, key := range keys {
		if !pattern.MatchString(key) {
			continue
		}
		data, err := d.store.Get(key)
		if err != nil {
			return nil, err
		}
		m, err := ParseAzure(key, data)
		if err != nil {
			return nil, err
		}
		cur, ok := best[m.BillingMonth]
		if !ok || m.SubmittedTime.After(cur.SubmittedTime) {
			if ok { // if an earlier export run is being superseded...
				d.log.Debug("discarding run ", cur.RunID, " for ", cur.BillingMonth, " in favour of ", m.RunID)
			}
			best[m.BillingMonth] = m
		} else {
			d.log.Debug("discarding run ", m.RunID, " for ", m.BillingMonth, ", newer run ", cur.RunID, " exists")
		}
	}
	manifests := make([]*Azure, 0, len(best))
	for _, m := range best {
		manifests = append(manifests, m)
	}
	sort.SliceStable(manifests, func(i, j int) bool {
		return manifests[i].BillingMonth > manifests[j].BillingMonth
	})
	d.log.Info("discovered ", len(manifests), " Azure billing manifests under ", prefix, "/", exportName)
	return manifests, nil
}
