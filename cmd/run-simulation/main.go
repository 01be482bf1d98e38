// cmd/run-simulation/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"pfs-target-uploader/internal/common/config"
	"pfs-target-uploader/internal/common/database"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/planner"
	"pfs-target-uploader/internal/simulation"
	"pfs-target-uploader/internal/targets"
	"pfs-target-uploader/internal/uploads"
)

func main() {
	var (
		file       = flag.String("file", "", "target list to simulate (CSV or ECSV)")
		dateBegin  = flag.String("date-begin", "", "observation period begin, YYYY-MM-DD (HST)")
		dateEnd    = flag.String("date-end", "", "observation period end, YYYY-MM-DD (HST)")
		plannerURL = flag.String("planner-url", "", "override planner base URL")
		outputDir  = flag.String("output-dir", "", "override submission output directory")
		submit     = flag.Bool("submit", false, "package and register the submission")
		export     = flag.Bool("export", false, "write the submission zip to the current directory without registering it")
		email      = flag.String("email", "", "send the receipt to this address on submit")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: run-simulation -file <targets.csv> [-date-begin YYYY-MM-DD -date-end YYYY-MM-DD] [-submit]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if *plannerURL != "" {
		cfg.Planner.BaseURL = *plannerURL
	}
	if *outputDir != "" {
		cfg.Storage.OutputDir = *outputDir
	}

	zapLog := logger.New(cfg.Logging.Level, "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	if *dateBegin == "" || *dateEnd == "" {
		loc, _ := time.LoadLocation(cfg.Semester.Timezone)
		begin, end := targets.NextSemesterRange(time.Now(), loc)
		*dateBegin = begin.Format("2006-01-02")
		*dateEnd = end.Format("2006-01-02")
		fmt.Printf("Observation period defaulted to next semester: %s .. %s\n", *dateBegin, *dateEnd)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	plannerClient := planner.NewClient(
		cfg.Planner.BaseURL,
		config.GetDuration(cfg.Planner.Timeout),
		log,
	)
	store := uploads.NewStore(cfg.Storage.OutputDir, log)

	var registry simulation.UploadRegistry
	if *submit {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres connection failed", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Ping(ctx); err != nil {
			zapLog.Fatal("postgres ping failed", zap.Error(err))
		}
		registry = uploads.NewRegistry(pg, log)
	} else {
		registry = noopRegistry{}
	}

	service := simulation.NewService(plannerClient, store, registry, nil, nil, cfg, log)

	req := &simulation.RunRequest{
		Filename:     filepath.Base(*file),
		Data:         data,
		DateBegin:    *dateBegin,
		DateEnd:      *dateEnd,
		ContactEmail: *email,
	}

	if *export {
		name, buf, err := service.Export(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Export written: %s\n", name)
		return
	}

	if *submit {
		res, err := service.Submit(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "submission failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Upload ID: %s\n", res.UploadID)
		fmt.Printf("Output:    %s\n", res.OutputDir)
		fmt.Printf("Zip:       %s\n", res.ZipFile)
		printAssessment(res.Assessment)
		return
	}

	res, err := service.Run(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}

	if res.Simulation != nil {
		fmt.Printf("Solver status: %d\n", res.Simulation.Status)
		fmt.Printf("Pointings:     %d\n", len(res.Simulation.PPCs))
		for _, row := range res.Simulation.Summary {
			fmt.Printf("  %-8s N_ppc=%-4d Texp=%.1fh ROT=%.1fh completion=%.0f%%\n",
				row.Resolution, row.NPPC, row.TexpHours, row.RequestTimeHours, row.CompletionAll)
		}
	}
	printAssessment(res.Assessment)
}

func printAssessment(a *planner.Assessment) {
	if a == nil {
		return
	}
	fmt.Printf("Requested observing time: %.1f h\n", a.RequestTimeHours)
	for _, warn := range a.Warnings {
		fmt.Printf("WARNING: %s\n", warn)
	}
	if a.OK {
		fmt.Println(a.Note)
	}
}

// noopRegistry satisfies the registry dependency for dry runs.
type noopRegistry struct{}

func (noopRegistry) Insert(ctx context.Context, rec *uploads.Record) error { return nil }
