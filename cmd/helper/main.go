package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"assetvault/internal/config"
	"assetvault/internal/db"
	"assetvault/internal/services"
	"assetvault/internal/utils/logger"
)

// Maintenance CLI: runs the version-repair pass either once or on a cron
// schedule, without needing the redis-backed task queue.
func main() {
	once := flag.Bool("once", false, "run one repair pass and exit")
	schedule := flag.String("schedule", "", "cron spec for periodic repair (overrides REPAIR_CRON)")
	flag.Parse()

	logger := logger.New("maintenance")

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repair := services.NewRepairService(db.GetDB())

	if *once {
		report, err := repair.Run(context.Background())
		if err != nil {
			log.Fatalf("Repair failed: %v", err)
		}
		logger.Success("Repair done: merged=%d renumbered=%d pins=%d",
			report.GroupsMerged, report.FilesRenumbered, report.AssignmentsRewritten)
		return
	}

	spec := cfg.Repair.CronSpec
	if *schedule != "" {
		spec = *schedule
	}

	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		report, err := repair.Run(context.Background())
		if err != nil {
			logger.Error("Repair pass failed", err)
			return
		}
		logger.Info("Repair pass: merged=%d renumbered=%d pins=%d",
			report.GroupsMerged, report.FilesRenumbered, report.AssignmentsRewritten)
	})
	if err != nil {
		log.Fatalf("Invalid cron spec %q: %v", spec, err)
	}

	logger.Info("Scheduling repair with spec %q", spec)
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx := c.Stop()
	<-ctx.Done()
	logger.Info("Maintenance scheduler stopped")
}
