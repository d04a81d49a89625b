package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vaxtrackhq/vaxtrack-backend/internal/config"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/database"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/logger"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/repository"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/service"
)

// import-students loads a CSV roster straight into the database, printing
// the same partial-success report the HTTP import endpoint returns.
func main() {
	var path string
	flag.StringVar(&path, "file", "", "Path to the roster CSV (columns: name, class, studentId)")
	flag.Parse()

	if path == "" {
		fmt.Println("Usage: import-students -file <roster.csv>")
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	file, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open roster")
	}
	defer file.Close()

	studentRepo := repository.NewStudentRepository(pool)
	studentService := service.NewStudentService(studentRepo, log)

	result, err := studentService.ImportRoster(ctx, file)
	if err != nil {
		log.Fatal().Err(err).Msg("Roster import failed")
	}

	fmt.Printf("Attempted: %d\nInserted:  %d\nFailed:    %d\n", result.Attempted, result.Inserted, len(result.Failures))
	for _, f := range result.Failures {
		fmt.Printf("  - %s\n", f.Reason)
	}
	if len(result.Failures) > 0 {
		os.Exit(1)
	}
}
