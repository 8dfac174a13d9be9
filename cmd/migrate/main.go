package main

import (
	"flag"
	"log"
	"os"

	"bpmn-interview-be/internal/model"
	"bpmn-interview-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	dsnFlag := flag.String("dsn", "", "postgres DSN, overrides DB_CONNECTION_STRING")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := *dsnFlag
	if dsn == "" {
		dsn = os.Getenv("DB_CONNECTION_STRING")
	}
	if dsn == "" {
		log.Fatal("Error: no DSN given (-dsn or DB_CONNECTION_STRING)")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.Options{Verbose: true})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Migrating bpmn_generations...")
	if err := db.AutoMigrate(&model.BpmnGeneration{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	var count int64
	if err := db.Model(&model.BpmnGeneration{}).Count(&count).Error; err != nil {
		log.Fatalf("Error: table check failed: %v", err)
	}
	log.Printf("Success: bpmn_generations ready (%d rows)", count)
}
