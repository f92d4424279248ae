package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"DesignStats/internal/app"
	"DesignStats/internal/domain"
	"DesignStats/internal/infrastructure/storage"
	"DesignStats/internal/ports"
	"DesignStats/internal/report"
)

var queryTypes = []string{
	"designs",
	"design-sources",
	"daily-sums",
	"monthly-sums",
	"yearly-sums",
	"total-sums",
	"design-daily-sums",
	"design-monthly-sums",
	"design-yearly-sums",
	"design-total-sums",
	"compare-daily-design-downloads",
	"compare-monthly-design-downloads",
	"compare-yearly-design-downloads",
	"compare-total-design-downloads",
	"design-statistics",
	"source-statistics",
}

// showFlags carry the query filters of the show subcommand.
type showFlags struct {
	format        string
	designID      int64
	title         string
	importDate    string
	limit         uint64
	showZeroRows  bool
	writeToFile   bool
	baseDirectory string
	source        string
	statisticType string
}

// newShowCmd creates the show subcommand.
func newShowCmd(flags *rootFlags) *cobra.Command {
	sf := &showFlags{}

	cmd := &cobra.Command{
		Use:       "show <queryType>",
		Short:     "Query collected statistics",
		Long:      "Run one of the predefined statistics queries and print the result as table, csv or json.\n\nQuery types:\n  " + strings.Join(queryTypes, "\n  "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: queryTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			format, err := report.ParseFormat(sf.format)
			if err != nil {
				return err
			}

			application, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer application.Close()

			table, err := runQuery(ctx, application, args[0], sf)
			if err != nil {
				return err
			}
			if table.Empty() {
				return fmt.Errorf("no data found")
			}

			out := io.Writer(cmd.OutOrStdout())
			if sf.writeToFile {
				file, path, err := createResultFile(sf.baseDirectory, args[0], sf.format)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
				fmt.Fprintf(cmd.OutOrStdout(), "Writing result to %s\n", path)
			}

			return report.Render(out, table, format)
		},
	}

	cmd.Flags().StringVarP(&sf.format, "as", "a", "table", "output format (table, csv, json)")
	cmd.Flags().Int64VarP(&sf.designID, "designId", "d", 0, "filter the query by design id")
	cmd.Flags().StringVarP(&sf.title, "title", "t", "", "filter the query by title")
	cmd.Flags().StringVarP(&sf.importDate, "importDate", "i", "", "filter the query by date (format: YYYY-MM-DD)")
	cmd.Flags().Uint64VarP(&sf.limit, "limit", "l", 0, "limit the query to the specified number of results")
	cmd.Flags().BoolVar(&sf.showZeroRows, "showZeroRows", false, "show rows that only contain 0 values")
	cmd.Flags().BoolVarP(&sf.writeToFile, "writeToFile", "w", false, "write the result to a file")
	cmd.Flags().StringVarP(&sf.baseDirectory, "baseDirectory", "b", "data", "base directory for the result files")
	cmd.Flags().StringVarP(&sf.source, "source", "s", "", "filter the query by source (Thingiverse, Cults3d, Printable)")
	cmd.Flags().StringVarP(&sf.statisticType, "statisticType", "y", "", "filter the query by statistic type (downloads, likes, ...)")

	return cmd
}

func runQuery(ctx context.Context, application *app.Application, queryType string, sf *showFlags) (report.Table, error) {
	filter, err := buildReportFilter(sf)
	if err != nil {
		return report.Table{}, err
	}

	reports := application.Reports()

	switch queryType {
	case "designs":
		designs, err := application.Designs().FindDesigns(ctx, ports.ListFilter{
			DesignID: sf.designID, Title: sf.title, Limit: sf.limit,
		})
		if err != nil {
			return report.Table{}, err
		}
		return designsTable(designs), nil
	case "design-sources":
		pairs, err := application.Designs().FindDesignSources(ctx, ports.ListFilter{
			DesignID: sf.designID, Platform: filter.Platform, Title: sf.title, Limit: sf.limit,
		})
		if err != nil {
			return report.Table{}, err
		}
		return designSourcesTable(pairs), nil
	case "daily-sums":
		return reports.SourceSums(ctx, storage.PeriodDaily, filter)
	case "monthly-sums":
		return reports.SourceSums(ctx, storage.PeriodMonthly, filter)
	case "yearly-sums":
		return reports.SourceSums(ctx, storage.PeriodYearly, filter)
	case "total-sums":
		return reports.SourceSums(ctx, storage.PeriodTotal, filter)
	case "design-daily-sums":
		return reports.DesignSums(ctx, storage.PeriodDaily, filter)
	case "design-monthly-sums":
		return reports.DesignSums(ctx, storage.PeriodMonthly, filter)
	case "design-yearly-sums":
		return reports.DesignSums(ctx, storage.PeriodYearly, filter)
	case "design-total-sums":
		return reports.DesignSums(ctx, storage.PeriodTotal, filter)
	case "compare-daily-design-downloads":
		return reports.CompareDesignDownloads(ctx, storage.PeriodDaily, filter)
	case "compare-monthly-design-downloads":
		return reports.CompareDesignDownloads(ctx, storage.PeriodMonthly, filter)
	case "compare-yearly-design-downloads":
		return reports.CompareDesignDownloads(ctx, storage.PeriodYearly, filter)
	case "compare-total-design-downloads":
		return reports.CompareDesignDownloads(ctx, storage.PeriodTotal, filter)
	case "design-statistics":
		return reports.DesignStatistics(ctx, filter)
	case "source-statistics":
		return reports.SourceStatistics(ctx, filter)
	}

	return report.Table{}, fmt.Errorf("unknown query type %q", queryType)
}

func buildReportFilter(sf *showFlags) (storage.ReportFilter, error) {
	filter := storage.ReportFilter{
		DesignID:     sf.designID,
		Title:        sf.title,
		ShowZeroRows: sf.showZeroRows,
		Limit:        sf.limit,
	}

	if sf.source != "" {
		platform, err := domain.ParsePlatform(sf.source)
		if err != nil {
			return storage.ReportFilter{}, err
		}
		filter.Platform = platform
	}
	if sf.importDate != "" {
		date, err := domain.ParseDate(sf.importDate)
		if err != nil {
			return storage.ReportFilter{}, err
		}
		filter.Date = date.String()
	}
	if sf.statisticType != "" {
		metric, err := domain.ParseMetricType(sf.statisticType)
		if err != nil {
			return storage.ReportFilter{}, err
		}
		filter.Metric = metric
	}

	return filter, nil
}

func designsTable(designs []domain.Design) report.Table {
	table := report.Table{Columns: []string{"id", "title"}}
	for _, design := range designs {
		table.Rows = append(table.Rows, []string{strconv.FormatInt(design.ID, 10), design.Title})
	}
	return table
}

func designSourcesTable(pairs []domain.DesignSource) report.Table {
	table := report.Table{Columns: []string{"design_id", "title", "source", "source_id", "inactive"}}
	for _, pair := range pairs {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(pair.DesignID, 10),
			pair.Title,
			string(pair.Platform),
			pair.ExternalID,
			strconv.FormatBool(pair.Inactive),
		})
	}
	return table
}

func createResultFile(baseDir, queryType, format string) (*os.File, string, error) {
	dir := filepath.Join(baseDir, "export")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create %s: %w", dir, err)
	}

	name := fmt.Sprintf("%s_%s.%s", queryType, time.Now().Format("2006-01-02_15-04-05"), format)
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create %s: %w", path, err)
	}
	return file, path, nil
}
