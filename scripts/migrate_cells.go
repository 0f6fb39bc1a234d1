package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"kladovka/internal/database"
	"kladovka/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type CellsConfig struct {
	Cells []models.Cell `yaml:"cells"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		cellsPath = flag.String("cells", "configs/cells.yaml", "path to cells.yaml")
		dbPath    = flag.String("db", "./data/kladovka.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*cellsPath)
	if err != nil {
		return fmt.Errorf("read cells: %w", err)
	}
	var cfg CellsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse cells: %w", err)
	}
	if len(cfg.Cells) == 0 {
		return fmt.Errorf("no cells in yaml")
	}

	db, err := database.NewDB(*dbPath, logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	updated := 0
	for _, c := range cfg.Cells {
		if c.Number == "" {
			continue
		}
		existing, err := db.GetCellByNumber(ctx, c.Number)
		if err == nil {
			c.ID = existing.ID
			if err = db.UpdateCell(ctx, &c); err != nil {
				return fmt.Errorf("update %s: %w", c.Number, err)
			}
			updated++
			continue
		}
		if err != database.ErrNotFound {
			return fmt.Errorf("get %s: %w", c.Number, err)
		}
		if err = db.CreateCell(ctx, &c); err != nil {
			return fmt.Errorf("create %s: %w", c.Number, err)
		}
		created++
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}
