package main

import (
	"context"
	"log"

	"ai-roomviz-be/internal/bootstrap"
	"ai-roomviz-be/internal/config"
	"ai-roomviz-be/internal/server"
	"ai-roomviz-be/internal/tracer"
	"ai-roomviz-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	ctx := context.Background()
	log.Println("Background: Starting Preparer Service...")
	if err := container.PreparerService.Consume(ctx); err != nil {
		log.Printf("Background Preparer Error: %v", err)
	}
	container.PreparerService.StartPoller(ctx)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
