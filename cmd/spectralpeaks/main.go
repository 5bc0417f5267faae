package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"spectralpeaks/internal/logger"
	"spectralpeaks/pkg/batch"
	"spectralpeaks/pkg/config"
)

func main() {
	config.LoadEnv()

	// Parse command line arguments
	configPath := flag.String("config", config.PathFromEnv(), "YAML configuration file (optional)")
	writeConfig := flag.Bool("write-config", false, "Write a default configuration file to -config and exit")
	inputDir := flag.String("input", "", "Directory searched recursively for images")
	outputFile := flag.String("output", "", "Output spreadsheet (.xlsx or .csv)")
	x1 := flag.Int("x1", 0, "Crop: first column (inclusive)")
	x2 := flag.Int("x2", 0, "Crop: last column (exclusive)")
	y1 := flag.Int("y1", 0, "Crop: first row (inclusive)")
	y2 := flag.Int("y2", 0, "Crop: last row (exclusive)")
	threshold := flag.Float64("threshold", 0, "Minimum mean power of a reported peak")
	extension := flag.String("ext", "", "Image file extension to search for (default .tif)")
	sheetName := flag.String("sheet", "", "Name of the results sheet")
	numCores := flag.Int("cores", 0, "Number of images analysed concurrently (default 1)")
	continueOnError := flag.Bool("continue-on-error", false, "Skip unreadable images instead of aborting")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save crops, spectra and profiles per image")
	intermediaryDir := flag.String("intermediary-dir", "", "Directory for intermediary results")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			logger.WithError(err).Fatal("Failed to write configuration")
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Explicit flags win over the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input.Dir = *inputDir
		case "output":
			cfg.Output.File = *outputFile
		case "x1":
			cfg.Crop.X1 = *x1
		case "x2":
			cfg.Crop.X2 = *x2
		case "y1":
			cfg.Crop.Y1 = *y1
		case "y2":
			cfg.Crop.Y2 = *y2
		case "threshold":
			cfg.Analysis.Threshold = *threshold
		case "ext":
			cfg.Input.Extension = *extension
		case "sheet":
			cfg.Output.SheetName = *sheetName
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "continue-on-error":
			cfg.Processing.ContinueOnError = *continueOnError
		case "save-intermediary":
			cfg.Output.SaveIntermediaryResults = *saveIntermediary
		case "intermediary-dir":
			cfg.Output.IntermediaryDir = *intermediaryDir
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	if cfg.Output.Verbose {
		logger.SetLevel("debug")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n%v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	params := &batch.Params{
		InputDir:                cfg.Input.Dir,
		Extension:               cfg.Input.Extension,
		Crop:                    cfg.Crop,
		Threshold:               cfg.Analysis.Threshold,
		OutputFile:              cfg.Output.File,
		SheetName:               cfg.Output.SheetName,
		NumCores:                cfg.Processing.NumCores,
		ContinueOnError:         cfg.Processing.ContinueOnError,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
	}

	runner := batch.NewRunner(params)
	err = runner.Process()

	var batchErr *batch.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		logger.WithError(err).Fatal("Analysis failed")
	}

	summary := runner.Summary()
	fmt.Printf("\nAnalysis completed in %.2f seconds\n", summary.Duration.Seconds())
	fmt.Printf("Results saved to: %s\n\n", params.OutputFile)
	fmt.Printf("Images found:        %d\n", summary.FilesDiscovered)
	fmt.Printf("Images analysed:     %d\n", summary.FilesProcessed)
	fmt.Printf("Peaks above %g: %d\n", params.Threshold, summary.PeaksFound)
	fmt.Printf("No peak:             %d\n", summary.PeaksMissing())
	if summary.PeaksFound > 0 {
		fmt.Printf("Peak radius:         %.2f ± %.2f\n", summary.MeanPeakRadius, summary.StdDevPeakRadius)
	}

	if batchErr != nil {
		fmt.Printf("Failed images:       %d\n", summary.FilesFailed)
		for _, failure := range batchErr.Failures {
			logger.WithError(failure.Cause).WithField("file", failure.Path).
				WithField("stage", failure.Stage).Warn("Image skipped")
		}
		os.Exit(2)
	}

	if params.SaveIntermediaryResults {
		fmt.Println("\nIntermediary results saved to:")
		fmt.Printf("%s\n", params.IntermediaryDir)
		fmt.Println("- 01_cropped: cropped regions")
		fmt.Println("- 02_log_spectrum: log-magnitude spectra")
		fmt.Println("- 03_radial_profile: radial profiles with detected peaks")
	}
}
