package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// Column is a description of a field from an AWS usage report manifest file.
// AWS CUR column names are formatted as "category/name" in the CSV header.
type Column struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

// Columns are the ordered set of AWS usage report columns declared by a manifest.
type Columns []Column

// Field is a warehouse column produced from a manifest Column.
type Field struct {
	Name     string
	Type     string // warehouse type token, e.g. STRING, BIGNUMERIC, TIMESTAMP
	Nullable bool
}

// awsTypeMap converts AWS CUR column type tokens to warehouse types.
// Unknown tokens default to STRING.
var awsTypeMap = map[string]string{
	"String":             "STRING",
	"BigDecimal":         "BIGNUMERIC",
	"OptionalBigDecimal": "BIGNUMERIC",
	"DateTime":           "TIMESTAMP",
	"OptionalString":     "STRING",
	"Interval":           "STRING",
}

// reservedWords are SQL keywords that need a suffix to be usable as column identifiers.
var reservedWords = map[string]struct{}{
	"group": {}, "order": {}, "user": {}, "table": {}, "index": {}, "key": {},
	"value": {}, "timestamp": {}, "date": {}, "year": {}, "month": {}, "day": {},
	"hour": {}, "minute": {}, "second": {}, "from": {}, "to": {},
}

var (
	camelBoundaryRegexp = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonAlnumRegexp      = regexp.MustCompile(`[^a-z0-9]`)
	multiUnderscore     = regexp.MustCompile(`_+`)
	leadingDigitRegexp  = regexp.MustCompile(`^[0-9]`)
)

// NormalizeName converts a raw AWS CUR column name to a warehouse-safe identifier.
// The rules must be applied in this exact order so that repeated loads of the same
// CSV headers produce byte-identical column names across runs.
func NormalizeName(name string) string {
	// Convert camelCase to snake_case.
	name = camelBoundaryRegexp.ReplaceAllString(name, "${1}_${2}")
	// Lowercase and replace non-alphanumeric with underscore.
	name = strings.ToLower(name)
	name = nonAlnumRegexp.ReplaceAllString(name, "_")
	// Remove consecutive underscores and strip edges.
	name = strings.Trim(multiUnderscore.ReplaceAllString(name, "_"), "_")
	// Handle edge cases.
	if name == "" {
		return "unknown_column"
	}
	if leadingDigitRegexp.MatchString(name) {
		name = "col_" + name
	}
	if _, reserved := reservedWords[name]; reserved {
		name = name + "_col"
	}
	return name
}

// resolveDuplicates appends numeric suffixes to repeated names in order of appearance.
// The first occurrence keeps the bare name. This can happen with user defined fields like tags.
func resolveDuplicates(names []string) []string {
	seen := make(map[string]int, len(names))
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		if n, exists := seen[name]; exists {
			seen[name] = n + 1
			resolved = append(resolved, name+"_"+strconv.Itoa(n+1))
		} else {
			seen[name] = 0
			resolved = append(resolved, name)
		}
	}
	return resolved
}

// warehouseType maps an AWS CUR type token to the warehouse type.
func warehouseType(awsType string) string {
	if t, ok := awsTypeMap[awsType]; ok {
		return t
	}
	return "STRING"
}

// Fields converts the manifest columns to warehouse fields with normalized,
// unique column names. The result order matches the manifest column order,
// which is also the CSV column order.
func (cols Columns) Fields() []Field {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = NormalizeName(c.Category + "/" + c.Name)
	}
	names = resolveDuplicates(names)
	fields := make([]Field, len(cols))
	for i, c := range cols {
		fields[i] = Field{
			Name:     names[i],
			Type:     warehouseType(c.Type),
			Nullable: true,
		}
	}
	return fields
}
