package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables supplying flag defaults.
const (
	EnvConfig   = "XPLAIN_CONFIG"
	EnvDatabase = "XPLAIN_DB"
	EnvLogLevel = "XPLAIN_LOG_LEVEL"
)

// LoadEnv loads KEY=VALUE pairs from the dotenv files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
