package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"spectralpeaks/internal/models"
)

func sampleTable() *models.ResultTable {
	table := models.NewResultTable()
	table.Append("a.tif", models.Peak{Radius: 12, Mean: 1.5})
	table.Append("c.tif", models.Peak{Radius: 47, Mean: 250})
	return table
}

func TestXLSXWriterSingleSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.xlsx")

	require.NoError(t, (&XLSXWriter{}).Write(path, "Results", sampleTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Results"}, f.GetSheetList())

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Radius", "Mean"},
		{"12", "1.5"},
		{"47", "250"},
	}, rows)
}

func TestXLSXWriterDefaultSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	require.NoError(t, (&XLSXWriter{}).Write(path, "", models.NewResultTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{DefaultSheetName}, f.GetSheetList())
	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Radius", "Mean"}}, rows)
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	require.NoError(t, (&CSVWriter{}).Write(path, "ignored", sampleTable()))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Radius", "Mean"},
		{"12", "1.5"},
		{"47", "250"},
	}, records)
}

func TestForPath(t *testing.T) {
	require.IsType(t, &CSVWriter{}, ForPath("out/results.CSV"))
	require.IsType(t, &XLSXWriter{}, ForPath("out/results.xlsx"))
	require.IsType(t, &XLSXWriter{}, ForPath("results"))
}

// TestWriteUnwritablePath places the output below a regular file
func TestWriteUnwritablePath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := (&XLSXWriter{}).Write(filepath.Join(blocker, "results.xlsx"), "", sampleTable())
	require.Error(t, err)

	err = (&CSVWriter{}).Write(filepath.Join(blocker, "results.csv"), "", sampleTable())
	require.Error(t, err)
}
