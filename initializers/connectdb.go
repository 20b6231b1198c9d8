package initializers

import (
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB // Migrate and the snapshot archive use this var; nil without DIRECT_URL

// ConnectDB opens the Postgres archive. Without DIRECT_URL the service runs
// purely in memory and DB stays nil.
func ConnectDB() error {
	dsn := os.Getenv("DIRECT_URL")
	if dsn == "" {
		log.Println("DIRECT_URL not set, running without the Postgres archive")
		return nil
	}
	log.Println("Connecting to database")

	pgConfig := postgres.Config{
		PreferSimpleProtocol: true, // Disable implicit prepared statement usage
		DriverName:           "postgres",
		DSN:                  dsn,
	}

	var err error
	DB, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		PrepareStmt:          false,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(gormLogLevel()),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	log.Println("Database connection successful")
	return nil
}

// gormLogLevel reads GORM_LOG_LEVEL (silent, error, warn, info); info logs
// every statement.
func gormLogLevel() logger.LogLevel {
	switch os.Getenv("GORM_LOG_LEVEL") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
