package initializers

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env when present. A missing file is fine; the process
// environment is used as is.
func LoadEnv() error {
	log.Println("Loading env file")
	err := godotenv.Load() // using the joho library to load variables from the .env file
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("No .env file found, using process environment")
		return nil
	}
	if err != nil {
		return fmt.Errorf("env not loading: %w", err)
	}
	log.Println("Env loaded successfully")
	return nil
}
