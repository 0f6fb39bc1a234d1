package config

import (
	"os"
	"path/filepath"
	"testing"

	"kladovka/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
telegram:
  bot_token: "test_token"
database:
  path: "test.db"
pricing:
  rate_per_cubic_meter: 1500
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "test_token" {
		t.Errorf("expected bot_token test_token, got %s", cfg.Telegram.BotToken)
	}

	if cfg.Pricing.RatePerCubicMeter != 1500 {
		t.Errorf("expected rate 1500, got %f", cfg.Pricing.RatePerCubicMeter)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_KLADOVKA_TOKEN", "env_token")

	yamlContent := `
telegram:
  bot_token: "${TEST_KLADOVKA_TOKEN}"
database:
  path: "test.db"
pricing:
  rate_per_cubic_meter: 1000
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "env_token" {
		t.Errorf("expected expanded token env_token, got %s", cfg.Telegram.BotToken)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Pricing:  PricingConfig{RatePerCubicMeter: 1500},
			},
			wantErr: false,
		},
		{
			name: "missing token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: ""},
				Database: DatabaseConfig{Path: "path"},
				Pricing:  PricingConfig{RatePerCubicMeter: 1500},
			},
			wantErr: true,
		},
		{
			name: "placeholder token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "YOUR_BOT_TOKEN_HERE"},
				Database: DatabaseConfig{Path: "path"},
				Pricing:  PricingConfig{RatePerCubicMeter: 1500},
			},
			wantErr: true,
		},
		{
			name: "zero rate",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	expectedReminder := "09:00"
	if cfg.Bot.ReminderTime != expectedReminder {
		t.Errorf("expected default reminder time %s, got %s", expectedReminder, cfg.Bot.ReminderTime)
	}
	if cfg.Bot.PaginationSize != models.DefaultPaginationSize {
		t.Errorf("expected default pagination size %d, got %d", models.DefaultPaginationSize, cfg.Bot.PaginationSize)
	}
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default HTTP port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.Uploads.MaxSizeBytes != models.MaxPhotoSizeBytes {
		t.Errorf("expected default upload limit %d, got %d", models.MaxPhotoSizeBytes, cfg.Uploads.MaxSizeBytes)
	}
}

func TestValidateCells(t *testing.T) {
	tests := []struct {
		name    string
		cells   []models.Cell
		wantErr bool
	}{
		{
			name: "valid cells",
			cells: []models.Cell{
				{Number: "A-01", Width: 1.2, Height: 2.1, Depth: 1.5},
				{Number: "A-02", Width: 1.2, Height: 2.1, Depth: 1.5},
			},
			wantErr: false,
		},
		{
			name: "duplicate number",
			cells: []models.Cell{
				{Number: "A-01", Width: 1.2, Height: 2.1, Depth: 1.5},
				{Number: "A-01", Width: 1.0, Height: 1.8, Depth: 1.0},
			},
			wantErr: true,
		},
		{
			name: "empty number",
			cells: []models.Cell{
				{Number: "", Width: 1.2, Height: 2.1, Depth: 1.5},
			},
			wantErr: true,
		},
		{
			name: "zero dimension",
			cells: []models.Cell{
				{Number: "A-01", Width: 0, Height: 2.1, Depth: 1.5},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCells(tt.cells)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCells() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
