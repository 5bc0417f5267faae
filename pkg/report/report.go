// Package report persists result tables as spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"spectralpeaks/internal/models"
)

// DefaultSheetName is the sheet the results are written to
const DefaultSheetName = "Sheet1"

// Writer persists a result table at path
type Writer interface {
	Write(path, sheet string, table *models.ResultTable) error
}

// ForPath picks a writer from the output file extension. ".csv" gets a
// CSVWriter; everything else is written as an XLSX workbook.
func ForPath(path string) Writer {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return &CSVWriter{}
	}
	return &XLSXWriter{}
}

// XLSXWriter writes a workbook with a single sheet
type XLSXWriter struct{}

// Write saves table to path. The workbook's default sheet is renamed to sheet,
// so the file never carries an extra empty sheet.
func (w *XLSXWriter) Write(path, sheet string, table *models.ResultTable) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if defaultSheet := f.GetSheetName(0); defaultSheet != sheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}

	for i, record := range table.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := record
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// CSVWriter writes the table as comma-separated values. The sheet name has
// no meaning in CSV and is ignored.
type CSVWriter struct{}

// Write saves table to path as CSV
func (w *CSVWriter) Write(path, _ string, table *models.ResultTable) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	out := csv.NewWriter(file)
	if err := out.Write(table.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range table.Rows {
		record := []string{formatFloat(row.Radius), formatFloat(row.Mean)}
		if err := out.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}
