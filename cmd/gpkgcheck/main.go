package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	gpkgcheck "github.com/nvigis/gpkgcheck"
	"github.com/nvigis/gpkgcheck/geom"
	"github.com/nvigis/gpkgcheck/internal/config"
	"github.com/nvigis/gpkgcheck/internal/report"
)

var (
	configPath       string
	categories       string
	tableLevelChecks bool
	noGeometry       bool
	noColor          bool
)

var rootCmd = &cobra.Command{
	Use:   "gpkgcheck <file.gpkg>",
	Short: "Validate a GeoPackage against the NVI 2023 exchange standard",
	Long: `gpkgcheck validates that a GeoPackage conforms to the Swedish NVI
standard SS 199000:2023: foreign keys, required columns, check constraints,
SQLite integrity, datetime formats, geometry types and spatial reference
consistency. The original file is never modified; every check runs against a
disposable temporary copy.`,
	Args:          cobra.ExactArgs(1),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a gpkgcheck.yaml run configuration")
	rootCmd.Flags().StringVarP(&categories, "categories", "c", "", "validation categories to run (comma-separated, default: all)")
	rootCmd.Flags().BoolVar(&tableLevelChecks, "table-level-checks", false, "report check-constraint violations per table instead of per row")
	rootCmd.Flags().BoolVar(&noGeometry, "no-geometry", false, "skip geometry type and spatial reference validation")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if categories == "" && len(cfg.Categories) > 0 {
		categories = strings.Join(cfg.Categories, ",")
	}
	if !cmd.Flags().Changed("table-level-checks") && cfg.TableLevelChecks != nil {
		tableLevelChecks = *cfg.TableLevelChecks
	}
	if !cmd.Flags().Changed("no-geometry") && cfg.Geometry != nil {
		noGeometry = !*cfg.Geometry
	}
	if !cmd.Flags().Changed("no-color") && cfg.Color != nil {
		noColor = !*cfg.Color
	}

	selected, err := gpkgcheck.ParseCategories(categories)
	if err != nil {
		return err
	}

	opts := &gpkgcheck.Options{TableLevelChecks: tableLevelChecks}
	if !noGeometry {
		opts.Geometry = geom.NewReader()
	}

	validator, err := gpkgcheck.New(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}

	rep := validator.Run(ctx, selected)

	printer := report.NewPrinter(os.Stdout, !noColor)
	if !printer.Print(rep) {
		os.Exit(1)
	}
	return nil
}

// loadConfig reads the configured file, or the default gpkgcheck.yaml if one
// exists in the working directory. Only an explicitly named file is required
// to exist.
func loadConfig() (*config.RunConfig, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(config.FileName)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return &config.RunConfig{}, nil
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
