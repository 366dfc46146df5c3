package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/ppg-analyzer/pipeline"
	"go.uber.org/zap"
)

func main() {
	var (
		inPath   = flag.String("in", "", "Path to input epoch matrix (.csv) or recording (.edf)")
		outDir   = flag.String("out", "", "Output directory")
		fs       = flag.Float64("fs", 0, "Sampling rate in Hz (CSV input)")
		format   = flag.String("format", "parquet", "Feature table format: parquet|csv")
		config   = flag.String("config", "", "Optional YAML parameter file")
		channel  = flag.String("channel", "", "EDF channel label")
		workers  = flag.Int("workers", 0, "Worker pool size (0 = config default)")
		epochSec = flag.Int("epoch", 30, "Epoch length in seconds (EDF input)")
		verbose  = flag.Bool("v", false, "Verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --in signal.csv --out outdir --fs 128 [--format parquet|csv] [--config params.yaml]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*inPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	params := pipeline.DefaultParams()
	if *config != "" {
		var err error
		params, err = pipeline.LoadParams(*config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ppg_extract failed: %v\n", err)
			os.Exit(1)
		}
	}
	if *workers > 0 {
		params.Workers = *workers
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ppg_extract failed: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}

	result, err := pipeline.Run(pipeline.Options{
		InPath:       *inPath,
		OutDir:       *outDir,
		Format:       *format,
		FS:           *fs,
		Channel:      *channel,
		EpochSeconds: *epochSec,
		Params:       params,
		Logger:       logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ppg_extract failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ppg_extract complete\n")
	fmt.Printf("run id:         %s\n", result.RunID)
	fmt.Printf("output dir:     %s\n", result.OutputDir)
	fmt.Printf("feature table:  %s\n", result.TablePath)
	fmt.Printf("failure log:    %s\n", result.FailureLogPath)
	fmt.Printf("epochs:         %d (%d valid)\n", result.Epochs, result.ValidEpochs)
	fmt.Printf("columns:        %d\n", len(result.Columns))
	for _, m := range result.FailedModules {
		fmt.Printf("module failed:  %s\n", m)
	}
}
