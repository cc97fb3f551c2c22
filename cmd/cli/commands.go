package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"vidinsights/adapters/excel"
	"vidinsights/app"
	"vidinsights/domain/core"
	domainStats "vidinsights/domain/stats"
	"vidinsights/domain/video"
	"vidinsights/internal/analytics"
	"vidinsights/ui"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	var bins int

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summary statistics, correlations and the view-count histogram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := service.Execute(cmd.Context(), app.Request{Command: app.CommandExplore, Bins: bins})
			if err != nil {
				return err
			}
			result := resp.Result.(*app.ExploreResult)

			report := service.Report()
			fmt.Printf("Dataset %s: %d kept of %d rows (%d dropped)\n\n", report.Fingerprint.Short(), report.KeptRows, report.TotalRows, report.DroppedRows())
			printSummary(result.Summary)
			if result.Correlation != nil {
				fmt.Printf("\n=== CORRELATION (absolute) ===\n")
				printCorrelation(result.Correlation)
			}
			fmt.Printf("\n=== VIEW COUNT HISTOGRAM ===\n")
			printHistogram(result.Views)
			printWarnings(result.Warnings)
			return nil
		},
	}

	cmd.Flags().IntVar(&bins, "bins", 0, "Histogram bin count (default $HISTOGRAM_BINS)")
	return cmd
}

func newTopCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most viewed videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := service.Execute(cmd.Context(), app.Request{Command: app.CommandTopVideos, TopN: n})
			if err != nil {
				return err
			}
			fmt.Printf("%-5s %-24s %14s %12s %12s\n", "Rank", "Video", "Views", "Likes", "Shares")
			for _, r := range resp.Result.([]video.RankedRecord) {
				fmt.Printf("%-5d %-24s %14d %12d %12d\n", r.Rank, r.VideoID, r.ViewCount, r.LikeCount, r.ShareCount)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "n", "n", 0, "Number of videos (default $TOP_N)")
	return cmd
}

func newRegressCmd() *cobra.Command {
	var vars []string
	var predict []float64

	cmd := &cobra.Command{
		Use:   "regress",
		Short: "Fit video_view_count on engagement attributes",
		Long: `Fit an ordinary least squares model of video_view_count with an intercept.

Example: vidinsights regress --vars video_like_count,video_share_count --predict 1200,45`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.RegressionRequest{IndependentVars: vars}
			if len(predict) > 0 {
				if len(predict) != len(vars) {
					return core.NewDimensionMismatchError(len(vars), len(predict))
				}
				req.Inputs = make(map[string]float64, len(vars))
				for i, name := range vars {
					req.Inputs[name] = predict[i]
				}
			}

			service, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := service.Execute(cmd.Context(), app.Request{Command: app.CommandRegression, Regression: req})
			if err != nil {
				return err
			}
			result := resp.Result.(*app.RegressionResult)
			fmt.Print(result.Summary)
			if result.Prediction != nil {
				fmt.Printf("\nPredicted %s: %.2f\n", video.AttrViewCount, *result.Prediction)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&vars, "vars", []string{string(video.AttrLikeCount)}, "Independent attributes")
	cmd.Flags().Float64SliceVar(&predict, "predict", nil, "Predictor values, in --vars order")
	return cmd
}

func newTTestCmd() *cobra.Command {
	var metric string
	var mean float64

	cmd := &cobra.Command{
		Use:   "ttest",
		Short: "One-sample t-test of an attribute mean",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := service.Execute(cmd.Context(), app.Request{
				Command:   app.CommandHypothesisTest,
				OneSample: app.OneSampleRequest{Metric: metric, ExpectedMean: mean},
			})
			if err != nil {
				return err
			}
			printTestResult(resp.Result.(*domainStats.HypothesisTestResult))
			return nil
		},
	}

	cmd.Flags().StringVar(&metric, "metric", string(video.AttrViewCount), "Attribute to test")
	cmd.Flags().Float64Var(&mean, "mean", 0, "Expected population mean")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var by, metric string
	var bins int

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Welch's t-test between the two groups of a column",
		Long: `Compare a metric between the two groups of a label or attribute column.

Example: vidinsights compare --by verified_status --metric video_view_count`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := service.Execute(cmd.Context(), app.Request{
				Command: app.CommandGroupTest,
				Groups:  app.GroupTestRequest{GroupColumn: by, Metric: metric, Bins: bins},
			})
			if err != nil {
				return err
			}
			result := resp.Result.(*app.GroupTestResult)
			printTestResult(result.Test)
			for _, d := range result.Distributions {
				fmt.Printf("\n=== %s = %s (%d videos) ===\n", by, d.Group, d.Count)
				printHistogram(d.Bins)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "Column that splits the records into two groups")
	cmd.Flags().StringVar(&metric, "metric", string(video.AttrViewCount), "Attribute to compare")
	cmd.Flags().IntVar(&bins, "bins", 0, "Histogram bin count per group (default $HISTOGRAM_BINS)")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newFilterCmd() *cobra.Command {
	var mins map[string]string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List videos meeting minimum thresholds",
		Long: `Keep the videos whose attributes are at least the given minimums.

Example: vidinsights filter --min video_view_count=10000,video_like_count=500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			thresholds, err := parseThresholds(mins)
			if err != nil {
				return err
			}
			service, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := service.Execute(cmd.Context(), app.Request{Command: app.CommandFilter, Thresholds: thresholds})
			if err != nil {
				return err
			}
			result := resp.Result.(*app.FilterResult)
			fmt.Printf("%d videos match\n", result.Count)
			for _, r := range result.Records {
				fmt.Printf("%-24s %14d views %12d likes %8.1fs\n", r.VideoID, r.ViewCount, r.LikeCount, r.DurationSec)
			}
			if result.Count > 0 {
				fmt.Printf("\n=== VIEW COUNT HISTOGRAM ===\n")
				printHistogram(result.Views)
			}
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&mins, "min", nil, "Minimum attribute values as name=value pairs")
	return cmd
}

func newCorrelateCmd() *cobra.Command {
	var attrs []string
	var absolute bool

	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Pearson correlation matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			matrix, err := service.Correlation(attrs, absolute)
			if err != nil {
				return err
			}
			printCorrelation(matrix)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&attrs, "attrs", nil, "Attributes to correlate (default all engagement attributes)")
	cmd.Flags().BoolVar(&absolute, "abs", false, "Report absolute coefficients")
	return cmd
}

func newExportCmd() *cobra.Command {
	var mins map[string]string
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write filtered videos to an XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			thresholds, err := parseThresholds(mins)
			if err != nil {
				return err
			}
			service, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			result, err := service.Filter(thresholds)
			if err != nil {
				return err
			}
			data, err := excel.NewExporter().ExportRecords(cmd.Context(), result.Records)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Printf("Wrote %d videos to %s\n", result.Count, out)
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&mins, "min", nil, "Minimum attribute values as name=value pairs")
	cmd.Flags().StringVarP(&out, "out", "o", "videos.xlsx", "Output file")
	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			server, err := ui.NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return server.Start()
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default $PORT)")
	return cmd
}

func parseThresholds(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for name, value := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("threshold %s=%q is not a number", name, value)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}

func printSummary(summaries []analytics.AttributeSummary) {
	fmt.Printf("%-24s %8s %14s %14s %12s %12s %12s %12s %14s\n",
		"", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, s := range summaries {
		fmt.Printf("%-24s %8d %14.4f %14.4f %12.4f %12.4f %12.4f %12.4f %14.4f\n",
			s.Attribute, s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max)
	}
}

func printCorrelation(m *analytics.CorrelationMatrix) {
	fmt.Printf("%-24s", "")
	for i := range m.Attributes {
		fmt.Printf(" %8s", fmt.Sprintf("[%d]", i))
	}
	fmt.Println()
	for i, name := range m.Attributes {
		fmt.Printf("%-24s", fmt.Sprintf("[%d] %s", i, name))
		for _, v := range m.Values[i] {
			fmt.Printf(" %8.3f", v)
		}
		fmt.Println()
	}
}

func printHistogram(bins []analytics.HistogramBin) {
	for _, b := range bins {
		fmt.Printf("[%14.2f, %14.2f) %8.0f\n", b.Lower, b.Upper, b.Count)
	}
}

func printTestResult(r *domainStats.HypothesisTestResult) {
	fmt.Printf("=== %s ===\n", strings.ToUpper(string(r.TestType)))
	if r.GroupColumn != "" {
		fmt.Printf("Groups: %s\n", r.GroupColumn)
	}
	if r.Metric != "" {
		fmt.Printf("Metric: %s\n", r.Metric)
	}
	for _, s := range r.Samples {
		fmt.Printf("  %-20s n=%-8d mean=%-14.4f sd=%.4f\n", s.Label, s.N, s.Mean, s.StdDev)
	}
	for _, ci := range r.Intervals {
		fmt.Printf("  %-20s 95%% CI [%.4f, %.4f]\n", ci.Label, ci.Lower, ci.Upper)
	}
	fmt.Printf("t = %.4f  df = %.2f  p = %.6f\n", r.Statistic, r.DegreesOfFreedom, r.PValue)
	fmt.Println(r.Verdict())
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}
