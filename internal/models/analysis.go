package models

import (
	"fmt"
	"math"
	"time"
)

// ProfileLength is the number of radial bins in every RadialProfile.
// Bins cover radii 1..ProfileLength; radius 0 (the DC term) is never included.
const ProfileLength = 200

// Fixed header of the result spreadsheet
const (
	HeaderRadius = "Radius"
	HeaderMean   = "Mean"
)

// CropRect is the region of interest applied to every image of a batch.
// Columns [X1, X2) and rows [Y1, Y2) are kept.
type CropRect struct {
	X1 int `yaml:"x1"`
	X2 int `yaml:"x2"`
	Y1 int `yaml:"y1"`
	Y2 int `yaml:"y2"`
}

// Width is the number of columns kept by the crop.
func (c CropRect) Width() int { return c.X2 - c.X1 }

// Height is the number of rows kept by the crop.
func (c CropRect) Height() int { return c.Y2 - c.Y1 }

func (c CropRect) String() string {
	return fmt.Sprintf("x[%d:%d] y[%d:%d]", c.X1, c.X2, c.Y1, c.Y2)
}

// RadialProfile holds the mean power of a spectrum over concentric rings.
// Radii and Means always have ProfileLength entries. A bin that no pixel
// falls into carries NaN in Means.
type RadialProfile struct {
	Radii []float64
	Means []float64
}

// Valid reports whether bin i received at least one pixel.
func (p RadialProfile) Valid(i int) bool {
	return i >= 0 && i < len(p.Means) && !math.IsNaN(p.Means[i])
}

// Peak is the first significant local maximum of a RadialProfile
type Peak struct {
	Radius float64
	Mean   float64
}

// Row is one line of the result table. Source is the image the peak came from;
// it is used for logging and is not persisted as a column.
type Row struct {
	Radius float64
	Mean   float64
	Source string
}

// ResultTable accumulates one row per image that yielded a peak, in the
// order the images were discovered.
type ResultTable struct {
	Rows []Row
}

// NewResultTable returns an empty table
func NewResultTable() *ResultTable {
	return &ResultTable{Rows: make([]Row, 0)}
}

// Header returns the fixed header row.
func (t *ResultTable) Header() []string {
	return []string{HeaderRadius, HeaderMean}
}

// Append adds a row for the given source image.
func (t *ResultTable) Append(source string, peak Peak) {
	t.Rows = append(t.Rows, Row{Radius: peak.Radius, Mean: peak.Mean, Source: source})
}

// Len returns the number of data rows (header excluded).
func (t *ResultTable) Len() int { return len(t.Rows) }

// Records returns the table as spreadsheet records: the header followed by
// one (radius, mean) record per row.
func (t *ResultTable) Records() [][]interface{} {
	records := make([][]interface{}, 0, len(t.Rows)+1)
	records = append(records, []interface{}{HeaderRadius, HeaderMean})
	for _, row := range t.Rows {
		records = append(records, []interface{}{row.Radius, row.Mean})
	}
	return records
}

// Summary describes a finished batch run
type Summary struct {
	// FilesDiscovered is the number of files matching the configured extension
	FilesDiscovered int

	// FilesProcessed counts files that went through the whole pipeline
	FilesProcessed int

	// PeaksFound counts files that contributed a row to the table
	PeaksFound int

	// FilesFailed counts files skipped because of an error
	// (only non-zero when errors are isolated per file)
	FilesFailed int

	// MeanPeakRadius and StdDevPeakRadius describe the detected radii.
	// Both are NaN when no peak was found.
	MeanPeakRadius   float64
	StdDevPeakRadius float64

	// Duration is the wall time of the run
	Duration time.Duration
}

// PeaksMissing is the number of processed files without a peak above threshold.
func (s Summary) PeaksMissing() int {
	return s.FilesProcessed - s.PeaksFound
}
