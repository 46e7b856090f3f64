package manifest

import "strings"

// DataFileURIs resolves the warehouse-loadable object URIs for the
// manifest's data files.
//
// The export transfer replicates each provider's directory layout under the
// bucket, but the key paths recorded inside the manifests are rooted at the
// provider's own storage, not at the transfer destination. URIs are therefore
// rebuilt relative to the manifest's discovered location, keeping only the
// path segments below the point where the layouts agree.
func (m *AWS) DataFileURIs(bucket string) []string {
	if m.IsParquet() {
		return m.parquetURIs(bucket)
	}
	return m.csvURIs(bucket)
}

// csvURIs handles the CSV layout: reportKeys end in
// {assemblyId}/{file}.csv.gz and the files live beside the manifest, so the
// last two segments are appended to the manifest's directory.
func (m *AWS) csvURIs(bucket string) []string {
	base := parentDir(m.Path)
	uris := make([]string, 0, len(m.ReportKeys))
	for _, key := range m.ReportKeys {
		uris = append(uris, objectURI(bucket, joinPath(base, relativeSuffix(key, 2))))
	}
	return uris
}

// parquetURIs handles the Hive-partitioned Parquet layout: reportKeys end in
// {export}/year=YYYY/month=MM/{file} and the files live beside the
// date-range directory, so the last four segments are appended to the
// manifest's grandparent directory.
func (m *AWS) parquetURIs(bucket string) []string {
	base := parentDir(parentDir(m.Path))
	uris := make([]string, 0, len(m.ReportKeys))
	for _, key := range m.ReportKeys {
		uris = append(uris, objectURI(bucket, joinPath(base, relativeSuffix(key, 4))))
	}
	return uris
}

// DataFileURIs resolves the warehouse-loadable object URIs for the
// manifest's blobs. Azure blobName paths are rooted at the storage account
// container, but the data files sit beside the manifest, so only the
// filename is kept.
func (m *Azure) DataFileURIs(bucket string) []string {
	base := parentDir(m.Path)
	uris := make([]string, 0, len(m.Blobs))
	for _, b := range m.Blobs {
		uris = append(uris, objectURI(bucket, joinPath(base, relativeSuffix(b.Name, 1))))
	}
	return uris
}

// relativeSuffix returns the last n slash-separated segments of key, or just
// the filename when the key has fewer segments than requested.
func relativeSuffix(key string, n int) string {
	parts := strings.Split(key, "/")
	if len(parts) < n {
		return parts[len(parts)-1]
	}
	return strings.Join(parts[len(parts)-n:], "/")
}

func parentDir(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func joinPath(base, rel string) string {
	if base == "" {
		return rel
	}
	return base + "/" + rel
}

func objectURI(bucket, path string) string {
	return "gs://" + bucket + "/" + path
}
