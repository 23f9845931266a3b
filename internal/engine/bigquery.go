package engine

import "cloud.google.com/go/bigquery"

// ToBigQuerySchema renders the canonical output into
// cloud.google.com/go/bigquery's own vocabulary, so a caller already
// using that client library can hand an inferred schema straight to
// bigquery.TableMetadata without a translation layer. This is an
// additional projection alongside the plain Field/JSON shape required
// by spec.md §6; it is not itself the canonical serialization target.
func ToBigQuerySchema(fields []Field) bigquery.Schema {
	schema := make(bigquery.Schema, 0, len(fields))
	for _, f := range fields {
		schema = append(schema, toFieldSchema(f))
	}
	return schema
}

func toFieldSchema(f Field) *bigquery.FieldSchema {
	fs := &bigquery.FieldSchema{
		Name:     f.Name,
		Required: f.Mode == "REQUIRED",
		Repeated: f.Mode == "REPEATED",
		Type:     bigquery.FieldType(canonicalToBigQueryType(f.Type)),
	}
	if f.Type == "RECORD" {
		fs.Schema = ToBigQuerySchema(f.Fields)
	}
	return fs
}

func canonicalToBigQueryType(canonicalType string) string {
	switch canonicalType {
	case "BOOLEAN":
		return string(bigquery.BooleanFieldType)
	case "INTEGER":
		return string(bigquery.IntegerFieldType)
	case "FLOAT":
		return string(bigquery.FloatFieldType)
	case "STRING":
		return string(bigquery.StringFieldType)
	case "DATE":
		return string(bigquery.DateFieldType)
	case "TIME":
		return string(bigquery.TimeFieldType)
	case "TIMESTAMP":
		return string(bigquery.TimestampFieldType)
	case "RECORD":
		return string(bigquery.RecordFieldType)
	default:
		return string(bigquery.StringFieldType)
	}
}
