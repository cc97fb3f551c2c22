package main

import (
	"context"
	"fmt"
	"os"

	"vidinsights/adapters/excel"
	"vidinsights/app"
	"vidinsights/internal"
	"vidinsights/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var dataFile string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "vidinsights",
		Short: "Engagement analytics for short-form video datasets",
		Long: `Explore a short-form video engagement dataset from the command line.

The dataset is a CSV or XLSX file with the columns video_id, video_view_count,
video_like_count, video_comment_count, video_share_count, video_download_count
and video_duration_sec. Extra columns are kept as labels for group comparisons.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataFile, "data", "", "Dataset file (default $DATA_FILE or tiktok_dataset.csv)")

	rootCmd.AddCommand(
		newDescribeCmd(),
		newTopCmd(),
		newRegressCmd(),
		newTTestCmd(),
		newCompareCmd(),
		newFilterCmd(),
		newCorrelateCmd(),
		newExportCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the --data override
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataFile != "" {
		cfg.Data.File = dataFile
	}
	internal.DefaultLogger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	return cfg, nil
}

// loadService prepares the dataset for a one-shot command
func loadService(ctx context.Context) (*app.DashboardService, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	service := app.NewDashboardService(cfg.Analytics)
	if err := service.Load(ctx, excel.NewDataReader(cfg.Data.File)); err != nil {
		return nil, err
	}
	return service, nil
}
