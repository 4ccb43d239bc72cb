package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"designspace/internal"
	"designspace/internal/errors"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Writer writes named tables into a directory, one file per table
type Writer struct {
	dir    string
	format Format
	logger *internal.Logger
}

// NewWriter creates a writer for dir in the given format
func NewWriter(dir string, format Format, logger *internal.Logger) *Writer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Writer{dir: dir, format: format, logger: logger}
}

// Path returns the file a table named name is written to
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+"."+string(w.format))
}

// WriteTable writes headers and rows to <dir>/<name>.<format>
func (w *Writer) WriteTable(ctx context.Context, name string, headers []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.IOError(w.dir, err)
	}

	path := w.Path(name)
	var err error
	switch w.format {
	case FormatCSV:
		err = writeCSV(path, headers, rows)
	default:
		err = writeXLSX(path, headers, rows)
	}
	if err != nil {
		return err
	}
	w.logger.Info("[tabular] wrote %s (%d rows)", path, len(rows))
	return nil
}

func writeCSV(path string, headers []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.IOError(path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(headers); err != nil {
		return errors.IOError(path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}

func writeXLSX(path string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(defaultSheet, "A1", &headers); err != nil {
		return errors.Wrap(err, "failed to write header row")
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(defaultSheet, cell, &rows[i]); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+1)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return errors.IOError(path, fmt.Errorf("save workbook: %w", err))
	}
	return nil
}
