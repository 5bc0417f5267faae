package visualization

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"spectralpeaks/internal/models"
)

// Stage directories written below the intermediary directory
const (
	StageCropped  = "01_cropped"
	StageSpectrum = "02_log_spectrum"
	StageProfile  = "03_radial_profile"
)

// Viewer stores intermediary results of the per-image pipeline so each step
// can be inspected after a run.
type Viewer struct {
	// dir is the root directory for all stages
	dir string
}

// NewViewer creates a viewer writing below dir
func NewViewer(dir string) *Viewer {
	return &Viewer{dir: dir}
}

// Dir returns the root directory of the viewer
func (v *Viewer) Dir() string {
	return v.dir
}

// SaveMatrix renders m as a 16-bit grayscale PNG at <dir>/<stage>/<name>.png
func (v *Viewer) SaveMatrix(stage, name string, m mat.Matrix) (string, error) {
	stageDir := filepath.Join(v.dir, stage)
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create intermediary directory: %w", err)
	}

	filename := filepath.Join(stageDir, name+".png")
	if err := imaging.Save(ToImage(m), filename); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return filename, nil
}

// SaveProfile writes the profile as CSV at <dir>/<stage>/<name>.csv with one
// line per ring and a column flagging the rings detected as peaks.
func (v *Viewer) SaveProfile(stage, name string, profile models.RadialProfile, found []models.Peak) (string, error) {
	stageDir := filepath.Join(v.dir, stage)
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create intermediary directory: %w", err)
	}

	isPeak := make(map[float64]bool, len(found))
	for _, p := range found {
		isPeak[p.Radius] = true
	}

	filename := filepath.Join(stageDir, name+".csv")
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create profile file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"radius", "mean", "peak"}); err != nil {
		return "", err
	}
	for i, r := range profile.Radii {
		record := []string{
			strconv.FormatFloat(r, 'g', -1, 64),
			strconv.FormatFloat(profile.Means[i], 'g', -1, 64),
			strconv.FormatBool(isPeak[r]),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write profile: %w", err)
	}
	return filename, nil
}

// ToImage maps the finite range of m linearly onto 0..65535.
// NaN and -Inf map to black, +Inf to white; a constant matrix renders black.
func ToImage(m mat.Matrix) *image.Gray16 {
	rows, cols := m.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))

	lo, hi := finiteRange(m)
	span := hi - lo

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			value := m.At(y, x)
			var level float64
			switch {
			case math.IsNaN(value) || math.IsInf(value, -1):
				level = 0
			case math.IsInf(value, 1):
				level = 1
			case span > 0:
				level = (value - lo) / span
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(math.Max(0, math.Min(1, level)) * 65535))})
		}
	}
	return img
}

// finiteRange returns the minimum and maximum of the finite entries of m
func finiteRange(m mat.Matrix) (lo, hi float64) {
	rows, cols := m.Dims()
	values := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if v := m.At(y, x); !math.IsNaN(v) && !math.IsInf(v, 0) {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	return floats.Min(values), floats.Max(values)
}
