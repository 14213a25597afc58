// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds everything the commands need, loaded from GASTOS_* environment
// variables (a local .env file is honored when present).
type Config struct {
	// FaturasDir is the directory statement CSVs are read from.
	FaturasDir string `koanf:"GASTOS_FATURAS_DIR"`

	// DataDir is the directory holding the ledger and run state.
	DataDir string `koanf:"GASTOS_DATA_DIR"`

	// GeminiModel is the model used for classification and insights.
	GeminiModel string `koanf:"GASTOS_GEMINI_MODEL"`

	// ClassifyTimeout bounds each remote classification call.
	ClassifyTimeout time.Duration `koanf:"GASTOS_CLASSIFY_TIMEOUT"`

	// DriveFolderID is the Google Drive folder scanned in --drive mode.
	DriveFolderID string `koanf:"GASTOS_DRIVE_FOLDER_ID"`

	// BackupBucket, when set, receives a ledger snapshot after each run.
	BackupBucket string `koanf:"GASTOS_BACKUP_BUCKET"`

	// BigQuery export coordinates, used by the export command.
	BQProject string `koanf:"GASTOS_BQ_PROJECT"`
	BQDataset string `koanf:"GASTOS_BQ_DATASET"`
	BQTable   string `koanf:"GASTOS_BQ_TABLE"`

	// DashboardAddr is the dashboard listen address.
	DashboardAddr string `koanf:"GASTOS_DASHBOARD_ADDR"`

	// LogLevel is the zerolog level name (debug, info, warn, error).
	LogLevel string `koanf:"GASTOS_LOG_LEVEL"`
}

func defaults() Config {
	return Config{
		FaturasDir:      "faturas",
		DataDir:         "data",
		GeminiModel:     "gemini-2.5-flash",
		ClassifyTimeout: 30 * time.Second,
		BQDataset:       "gastos",
		BQTable:         "transacoes",
		DashboardAddr:   ":8501",
		LogLevel:        "info",
	}
}

// Load reads configuration from the environment on top of the defaults.
func Load() (Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("GASTOS_", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}
