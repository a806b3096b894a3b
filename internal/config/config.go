package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/eamoe/jira-flow-metrics/internal/jira"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultDatasetFile is the dataset name used when no --input/--output
// flag overrides it.
const DefaultDatasetFile = "jira_issues.csv"

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Jira     jira.Config
	DataPath string
	LogDir   string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOG_DIR", filepath.Join(dataPath, "logs"))
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	timeoutSecs, _ := strconv.Atoi(getEnv("HTTP_TIMEOUT", "30"))

	cfg := &AppConfig{
		Jira: jira.Config{
			BaseURL:       getEnv("JIRA_BASE_URL", ""),
			Email:         getEnv("JIRA_EMAIL", ""),
			APIToken:      getEnv("JIRA_API_TOKEN", ""),
			PersonalToken: getEnv("JIRA_PERSONAL_TOKEN", ""),
			Timeout:       time.Duration(timeoutSecs) * time.Second,
		},
		DataPath: dataPath,
		LogDir:   logDir,
	}

	return cfg, nil
}

// DefaultDatasetPath is where extract writes and analyze reads unless a
// flag says otherwise.
func (c *AppConfig) DefaultDatasetPath() string {
	return filepath.Join(c.DataPath, DefaultDatasetFile)
}

// WorkflowPath is the default location of the workflow mapping file,
// seeded by extract and consumed by every analysis command.
func (c *AppConfig) WorkflowPath() string {
	return filepath.Join(c.DataPath, "workflow.yaml")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
