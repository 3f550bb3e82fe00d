package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvDataDir  = "REBOUND_DATA"
	EnvLogLevel = "REBOUND_LOG_LEVEL"
	EnvAddr     = "REBOUND_ADDR"
)

// Env holds process-level settings that are not part of a scenario.
type Env struct {
	DataDir  string
	LogLevel string
	Addr     string
}

// LoadEnv reads the given dotenv files into the process environment and
// returns the resolved settings. Missing files are ignored and variables
// already set win over file contents.
func LoadEnv(paths ...string) (Env, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, err
		}
	}
	return Env{
		DataDir:  getenv(EnvDataDir, ".rebound"),
		LogLevel: getenv(EnvLogLevel, "info"),
		Addr:     getenv(EnvAddr, ":8080"),
	}, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
