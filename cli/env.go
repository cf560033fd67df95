package cli

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables before flags are parsed, so that the
// HYOUBKP_* variables can provide flag defaults. The file named by
// --env-file in args is required to exist; otherwise .env in the working
// directory is loaded if present. Variables already set are not overridden.
func LoadEnv(args []string) error {
	if path := envFileArg(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

// envFileArg finds the value of --env-file in args, in either the
// "--env-file FILE" or "--env-file=FILE" form.
func envFileArg(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if value, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return value
		}
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
