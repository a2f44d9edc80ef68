package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

var batchSize int

var rootCmd = &cobra.Command{
	Use:   "load_ingredients <file.json>",
	Short: "Load ingredients from a JSON file",
	Long: `Reads a JSON array of {"name", "measurement_unit"} objects and inserts
the ingredients that do not exist yet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open ingredients file: %w", err)
		}
		defer f.Close()

		ingredients, err := readIngredients(f)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

		db, err := database.New(cfg)
		if err != nil {
			return err
		}
		if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
			return err
		}

		inserted, err := service.NewIngredientService(db).ImportIngredients(context.Background(), ingredients, batchSize)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d of %d ingredients (%d already present)\n",
			inserted, len(ingredients), int64(len(ingredients))-inserted)
		return nil
	},
}

// readIngredients decodes and trims the ingredient list, rejecting entries
// without a name or unit.
func readIngredients(r io.Reader) ([]models.Ingredient, error) {
	var items []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}

	out := make([]models.Ingredient, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		unit := strings.TrimSpace(item.MeasurementUnit)
		if name == "" || unit == "" {
			return nil, fmt.Errorf("entry %d: name and measurement_unit are required", i)
		}
		out = append(out, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return out, nil
}

func main() {
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 500, "rows per insert statement")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
