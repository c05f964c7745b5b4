package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var load sync.Once

// Config returns the value of an environment variable, loading .env on
// first use. Called from main and the wiring layer only; components get
// their configuration through constructors.
func Config(key string) string {
	load.Do(func() {
		godotenv.Load(".env")
	})
	return os.Getenv(key)
}
