package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/Abraxas-365/cvscreen/internal/db"
	"github.com/Abraxas-365/cvscreen/pkg/logx"
)

func main() {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASS"),
		os.Getenv("DB_NAME"),
	)

	database, err := sql.Open("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(context.Background(), database); err != nil {
		logx.Fatalf("Failed to run migrations: %v", err)
	}

	logx.Info("Migrations applied")
}
