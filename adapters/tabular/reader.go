package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"designspace/domain/condition"
	"designspace/internal"
	"designspace/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Format is the on-disk table format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf infers the format from a file extension; anything but .csv is xlsx.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// Reader reads the design-space table from a CSV or XLSX file
type Reader struct {
	path   string
	sheet  string
	format Format
	logger *internal.Logger
}

// NewReader creates a reader. An empty sheet selects the workbook's first sheet.
func NewReader(path, sheet string, logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{path: path, sheet: sheet, format: FormatOf(path), logger: logger}
}

// ReadRows reads the header row and every data row, trimming cells.
func (r *Reader) ReadRows(ctx context.Context) (condition.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return condition.RawTable{}, err
	}
	if _, err := os.Stat(r.path); err != nil {
		return condition.RawTable{}, errors.IOError(r.path, err)
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch r.format {
	case FormatCSV:
		rows, err = r.readCSV()
	default:
		rows, err = r.readXLSX()
	}
	if err != nil {
		return condition.RawTable{}, err
	}
	r.logger.Debug("[tabular] %s read in %.2fms (%d rows)", r.path, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return condition.RawTable{}, errors.InvalidInput(fmt.Sprintf("%s must have a header row and at least one data row", r.path))
	}
	return processRows(rows), nil
}

func (r *Reader) readCSV() ([][]string, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, errors.IOError(r.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IOError(r.path, err)
	}
	return rows, nil
}

func (r *Reader) readXLSX() ([][]string, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, errors.IOError(r.path, err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput(fmt.Sprintf("%s has no sheets", r.path))
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheet)
	}
	return rows, nil
}

// processRows keys every data row by header. Short rows are padded with
// empty cells so every header is present.
func processRows(rows [][]string) condition.RawTable {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	table := condition.RawTable{Headers: headers, Rows: make([]condition.RawRow, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		raw := make(condition.RawRow, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(row) {
				raw[h] = strings.TrimSpace(row[j])
			} else {
				raw[h] = ""
			}
		}
		table.Rows = append(table.Rows, raw)
	}
	return table
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
