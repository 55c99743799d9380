package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvFileVar names an optional dotenv file loaded before parsing.
const EnvFileVar = "TABLEROLL_ENV_FILE"

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv reads the dotenv files into the process environment. Variables
// already set win. Missing files are skipped; with no paths it reads the file
// named by TABLEROLL_ENV_FILE, or ".env".
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		path := strings.TrimSpace(os.Getenv(EnvFileVar))
		if path == "" {
			path = ".env"
		}
		paths = []string{path}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}
