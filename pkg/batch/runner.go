package batch

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"spectralpeaks/internal/logger"
	"spectralpeaks/internal/models"
	"spectralpeaks/pkg/imageio"
	"spectralpeaks/pkg/peaks"
	"spectralpeaks/pkg/radial"
	"spectralpeaks/pkg/report"
	"spectralpeaks/pkg/spectrum"
	"spectralpeaks/pkg/visualization"
)

// Params holds the parameters of a batch run.
type Params struct {
	// InputDir is searched recursively for images
	InputDir string

	// Extension selects the images to analyse, e.g. ".tif"
	Extension string

	// Crop is the region of interest applied to every image
	Crop models.CropRect

	// Threshold is the minimum mean power of a reported peak
	Threshold float64

	// OutputFile is the spreadsheet written by Process
	OutputFile string

	// SheetName names the results sheet
	SheetName string

	// NumCores is the number of images analysed concurrently.
	// Values below 2 run the batch sequentially.
	NumCores int

	// ContinueOnError skips failing images instead of aborting the run.
	// Skipped images are reported through a *BatchError.
	ContinueOnError bool

	// SaveIntermediaryResults stores the crop, log spectrum and profile of each image
	SaveIntermediaryResults bool

	// IntermediaryDir receives the intermediary results
	IntermediaryDir string
}

// ImageLoader reads an image file as a sample matrix
type ImageLoader interface {
	Load(path string) (*mat.Dense, error)
}

// Option customises a Runner
type Option func(*Runner)

// WithLoader replaces the file loader
func WithLoader(loader ImageLoader) Option {
	return func(r *Runner) { r.loader = loader }
}

// WithWriter replaces the spreadsheet writer chosen from the output path
func WithWriter(writer report.Writer) Option {
	return func(r *Runner) { r.writer = writer }
}

// Runner analyses every matching image of a directory tree:
//  1. discover the images in a stable order
//  2. load and crop each image
//  3. compute the centred power spectrum
//  4. reduce it to a radial profile
//  5. keep the first peak above threshold
//
// and collects one row per image with a peak.
type Runner struct {
	params *Params
	loader ImageLoader
	writer report.Writer

	// viewer is nil unless intermediary results are saved
	viewer *visualization.Viewer

	summary models.Summary
}

// fileResult is the outcome of the pipeline for one image
type fileResult struct {
	peak    models.Peak
	found   bool
	err     *FileError
	skipped bool
}

// NewRunner creates a runner for params
func NewRunner(params *Params, opts ...Option) *Runner {
	r := &Runner{
		params: params,
		loader: imageio.NewLoader(),
		writer: report.ForPath(params.OutputFile),
	}
	if params.SaveIntermediaryResults {
		r.viewer = visualization.NewViewer(params.IntermediaryDir)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Process runs the batch and writes the result table to the output file.
// Nothing is written when an image fails and ContinueOnError is off. With
// ContinueOnError the table is written and the *BatchError is returned after.
func (r *Runner) Process() error {
	table, err := r.Run()
	var batchErr *BatchError
	if err != nil && !errors.As(err, &batchErr) {
		return err
	}

	sheet := r.params.SheetName
	if sheet == "" {
		sheet = report.DefaultSheetName
	}
	if writeErr := r.writer.Write(r.params.OutputFile, sheet, table); writeErr != nil {
		return fmt.Errorf("failed to write results: %w", writeErr)
	}
	logger.WithFields(logrus.Fields{
		"file": r.params.OutputFile,
		"rows": table.Len(),
	}).Info("Results written")

	return err
}

// Run analyses every image and returns the result table in traversal order.
func (r *Runner) Run() (*models.ResultTable, error) {
	start := time.Now()
	r.summary = models.Summary{MeanPeakRadius: math.NaN(), StdDevPeakRadius: math.NaN()}
	defer func() { r.summary.Duration = time.Since(start) }()

	files, err := Discover(r.params.InputDir, r.params.Extension)
	if err != nil {
		return nil, err
	}
	r.summary.FilesDiscovered = len(files)

	if len(files) == 0 {
		logger.WithFields(logrus.Fields{
			"dir":       r.params.InputDir,
			"extension": r.params.Extension,
		}).Warn("No images found")
	} else {
		logger.WithFields(logrus.Fields{
			"images": len(files),
			"crop":   r.params.Crop.String(),
		}).Info("Analysing images")
	}

	var results []fileResult
	if r.params.NumCores > 1 && len(files) > 1 {
		results = r.analyzeParallel(files)
	} else {
		results = r.analyzeSequential(files)
	}

	table := models.NewResultTable()
	var failures []*FileError
	var radii []float64
	for i, res := range results {
		if res.skipped {
			continue
		}
		if res.err != nil {
			if !r.params.ContinueOnError {
				return nil, res.err
			}
			failures = append(failures, res.err)
			continue
		}

		r.summary.FilesProcessed++
		if res.found {
			table.Append(files[i], res.peak)
			radii = append(radii, res.peak.Radius)
		}
	}

	r.summary.PeaksFound = len(radii)
	r.summary.FilesFailed = len(failures)
	if len(radii) > 0 {
		r.summary.MeanPeakRadius, r.summary.StdDevPeakRadius = stat.MeanStdDev(radii, nil)
		if len(radii) == 1 {
			r.summary.StdDevPeakRadius = 0
		}
	}

	if len(failures) > 0 {
		return table, &BatchError{Failures: failures, Total: len(files)}
	}
	return table, nil
}

// Summary returns the counters of the last run
func (r *Runner) Summary() models.Summary {
	return r.summary
}

// analyzeSequential processes the images one after another, stopping at the
// first failure unless errors are isolated.
func (r *Runner) analyzeSequential(files []string) []fileResult {
	results := make([]fileResult, len(files))
	for i, path := range files {
		results[i] = r.analyzeFile(i, path)
		if results[i].err != nil && !r.params.ContinueOnError {
			for j := i + 1; j < len(files); j++ {
				results[j].skipped = true
			}
			break
		}
		r.logProgress(i+1, len(files))
	}
	return results
}

// analyzeParallel spreads the images over a worker pool. Each result is stored
// at its traversal index, so the table is assembled in the same order as a
// sequential run. Once an image fails, images that have not started yet are
// skipped unless errors are isolated.
func (r *Runner) analyzeParallel(files []string) []fileResult {
	results := make([]fileResult, len(files))

	pool := NewWorkerPool(r.params.NumCores)
	pool.Start()
	defer pool.Close()

	var failed atomic.Bool
	var completed atomic.Int64
	for i, path := range files {
		i, path := i, path // per-iteration copies (go1.22 loop semantics)
		pool.Submit(func() {
			if failed.Load() && !r.params.ContinueOnError {
				results[i].skipped = true
				return
			}
			results[i] = r.analyzeFile(i, path)
			if results[i].err != nil {
				failed.Store(true)
			}
			r.logProgress(int(completed.Add(1)), len(files))
		})
	}
	pool.Wait()

	return results
}

// analyzeFile runs load → crop → spectrum → profile → peak for one image.
func (r *Runner) analyzeFile(index int, path string) fileResult {
	log := logger.WithField("file", path)

	img, err := r.loader.Load(path)
	if err != nil {
		return fileResult{err: &FileError{Path: path, Stage: StageLoad, Cause: err}}
	}

	region, err := imageio.Crop(img, r.params.Crop)
	if err != nil {
		return fileResult{err: &FileError{Path: path, Stage: StageCrop, Cause: err}}
	}

	power, err := spectrum.PowerSpectrum(region)
	if err != nil {
		return fileResult{err: &FileError{Path: path, Stage: StageSpectrum, Cause: err}}
	}

	profile := radial.Profile(power)
	peak, found := peaks.FindInProfile(profile, r.params.Threshold)
	if found {
		log.WithFields(logrus.Fields{"radius": peak.Radius, "mean": peak.Mean}).Debug("Peak found")
	} else {
		log.Debug("No peak above threshold")
	}

	if r.viewer != nil {
		r.saveIntermediaryResults(index, path, region, profile)
	}

	return fileResult{peak: peak, found: found}
}

// saveIntermediaryResults stores the crop, the log spectrum and the profile
// of one image. Failures are logged and never abort the run.
func (r *Runner) saveIntermediaryResults(index int, path string, region *mat.Dense, profile models.RadialProfile) {
	name := fmt.Sprintf("%03d_%s", index, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	log := logger.WithField("file", path)

	if _, err := r.viewer.SaveMatrix(visualization.StageCropped, name, region); err != nil {
		log.WithError(err).Warn("Failed to save cropped region")
	}

	if view, err := spectrum.LogMagnitude(region); err != nil {
		log.WithError(err).Warn("Failed to compute log spectrum")
	} else if _, err := r.viewer.SaveMatrix(visualization.StageSpectrum, name, view); err != nil {
		log.WithError(err).Warn("Failed to save log spectrum")
	}

	found := peaks.FindAll(profile.Radii, profile.Means, r.params.Threshold)
	if _, err := r.viewer.SaveProfile(visualization.StageProfile, name, profile, found); err != nil {
		log.WithError(err).Warn("Failed to save radial profile")
	}
}

func (r *Runner) logProgress(done, total int) {
	logger.WithFields(logrus.Fields{
		"done":     done,
		"total":    total,
		"progress": fmt.Sprintf("%.1f%%", float64(done)/float64(total)*100),
	}).Debug("Progress")
}
