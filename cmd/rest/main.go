package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bpmn-interview-be/internal/bootstrap"
	"bpmn-interview-be/internal/config"
	"bpmn-interview-be/internal/server"
	"bpmn-interview-be/internal/tracer"
	"bpmn-interview-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracing
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled)
	defer shutdownTracer(context.Background())

	// 3. Database (optional, only the generation history needs it)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{Verbose: !cfg.IsProduction()})
		if err != nil {
			log.Printf("[WARN] Unable to connect to database, generation history disabled: %v", err)
		} else {
			gormDB = db
		}
	} else {
		log.Println("[WARN] DB_CONNECTION_STRING not set, generation history disabled")
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 5. Start Background Services
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}
	container.NotificationService.Start()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
