// Package sources provides the shared plumbing for source adapters:
// CSV decoding into raw records and construction of the per-source
// fetchers declared in configuration.
package sources

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

// DecodeCSV reads a CSV stream into raw records. The first row is the
// header; header cells are trimmed but otherwise kept verbatim since
// column-name drift is resolved downstream. Rows shorter or longer than
// the header are tolerated: missing cells are absent from the row map,
// surplus cells are dropped. An empty stream yields zero records.
func DecodeCSV(r io.Reader) ([]record.Raw, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapParse("csv", "header", err)
	}
	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}

	var raws []record.Raw
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.WrapParse("csv", "row", err)
		}
		values := make(map[string]string, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(row) {
				values[col] = row[i]
			}
		}
		raws = append(raws, record.NewRaw(columns, values))
	}
	return raws, nil
}
