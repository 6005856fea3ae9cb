// Command sweep removes project ids that no longer resolve from stored profiles.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/profilekit/profilekit/internal/config"
	"github.com/profilekit/profilekit/internal/database"
	"github.com/profilekit/profilekit/internal/profiles"
	"github.com/profilekit/profilekit/internal/projects"
	"github.com/profilekit/profilekit/pkg/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report dangling references without writing")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall time limit")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("cannot connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.MongoDB.Database)
	svc := profiles.NewService(
		profiles.NewMongoRepo(db.Collection(database.ProfilesCollection)),
		projects.NewMongoRepo(db.Collection(database.ProjectsCollection)),
	)

	rep, err := svc.PruneDangling(ctx, *dryRun)
	if err != nil {
		logger.Errorf("sweep aborted after %d profile(s): %v", rep.Scanned, err)
		os.Exit(1)
	}
	logger.Infof("sweep done: scanned=%d repaired=%d removed_ids=%d dry_run=%v", rep.Scanned, rep.Repaired, rep.RemovedIDs, *dryRun)
}
