package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are tried in order in the configuration directory and then in
// the working directory. Existing environment variables are never
// overwritten.
var envFiles = []string{".env", ".env.local"}

func loadEnvFile(dir string) {
	dirs := []string{dir}
	if dir != "." && dir != "" {
		dirs = append(dirs, ".")
	}
	for _, d := range dirs {
		for _, name := range envFiles {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := godotenv.Load(path); err != nil {
				slog.Warn("Failed to load environment file", slog.String("path", path), slog.String("error", err.Error()))
				continue
			}
			slog.Debug("Loaded environment variables", slog.String("path", path))
			return
		}
	}
}
