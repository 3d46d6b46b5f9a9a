package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"review_insights/internal/app"
	"review_insights/internal/config"
	"review_insights/internal/report"
)

func main() {
	input := flag.String("input", "", "process one review CSV and exit")
	out := flag.String("out", "", "override the artifact output directory")
	backfill := flag.Bool("backfill", false, "process inbox files present at startup before serving")
	flag.Parse()

	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *out != "" {
		cfg.OutputDir = *out
	}
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if *input != "" {
		rep, err := application.RunOnce(ctx, *input)
		if err != nil {
			log.Fatalf("run: %v", err)
		}
		fmt.Printf("run %s: %d reviews (%d rows skipped)\n\n", rep.RunID, rep.ReviewsTotal, rep.RowsSkipped)
		if err := report.Write(os.Stdout, rep.Insights); err != nil {
			log.Fatalf("print report: %v", err)
		}
		return
	}

	if *backfill {
		if err := application.Backfill(ctx); err != nil {
			log.Fatalf("backfill: %v", err)
		}
	}
	if err := application.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
