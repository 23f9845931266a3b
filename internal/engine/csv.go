package engine

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSVRecords adapts a CSV input into a flat object per row (header
// ↦ cell as string), as required by spec.md §6 ("CSV inputs are
// adapted by a converter that produces a flat object per row").
// Grounded on internal/loader/csv_loader.go's header-skip and
// per-row error wrapping.
func ReadCSVRecords(r io.Reader) ([]map[string]interface{}, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV input is empty")
	}

	header := rows[0]
	records := make([]map[string]interface{}, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := ConvertCSVRow(header, row)
		if err != nil {
			return nil, fmt.Errorf("error converting row %d: %w", i+2, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// ConvertCSVRow converts one CSV row into a flat JSON-shaped object
// using header as the field names. Extra cells beyond the header are
// dropped; missing trailing cells are treated as empty strings.
func ConvertCSVRow(header, row []string) (map[string]interface{}, error) {
	record := make(map[string]interface{}, len(header))
	for i, name := range header {
		if i < len(row) {
			record[name] = row[i]
		} else {
			record[name] = ""
		}
	}
	return record, nil
}
