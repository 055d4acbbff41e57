package cmd

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"lnk/internal/core/domain"
	"lnk/internal/core/services"
	"lnk/pkg/ui"
)

var (
	statsAllUsers bool
	statsChart    string
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show link and storage statistics",
	Long: `Show usage statistics for the current user, or for every user with --all.

With --chart, an interactive HTML bar chart is written comparing usage
across users.

Examples:
  lnk stats
  lnk stats --all
  lnk stats --all --chart usage.html`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVarP(&statsAllUsers, "all", "a", false, "Report every registered user")
	statsCmd.Flags().StringVar(&statsChart, "chart", "", "Write an HTML usage chart to this file")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	if statsAllUsers || statsChart != "" {
		reports, err := statsService.AllUsage(ctx)
		if err != nil {
			fmt.Println(ui.Error("Failed to gather statistics"))
			return err
		}

		table := ui.NewTable([]ui.Column{
			{Header: "USER", Width: 12},
			{Header: "LINKS", Width: 5, Align: "right"},
			{Header: "EXPIRED", Width: 7, Align: "right"},
			{Header: "FILES", Width: 5, Align: "right"},
			{Header: "STORAGE", Width: 8, Align: "right"},
		})
		for _, r := range reports {
			table.AddRow([]string{
				r.Tenant,
				fmt.Sprintf("%d", r.Total),
				fmt.Sprintf("%d", r.Expired),
				fmt.Sprintf("%d", r.Files),
				formatBytes(r.Bytes),
			})
		}

		fmt.Println(ui.Title("Usage by user"))
		fmt.Println()
		fmt.Print(table.Render())

		if statsChart != "" {
			if err := writeUsageChart(statsChart, reports); err != nil {
				fmt.Println(ui.Error("Failed to write chart"))
				return err
			}
			fmt.Println()
			fmt.Println(ui.Success("Chart written to " + statsChart))
		}
		return nil
	}

	report, err := statsService.TenantUsage(ctx, "")
	if err != nil {
		fmt.Println(ui.Error("Failed to gather statistics"))
		return err
	}

	fmt.Println(ui.Title("Usage: " + report.Tenant))
	fmt.Println()
	fmt.Println(ui.KeyValue("Links", fmt.Sprintf("%d", report.Total)))
	for _, kind := range []domain.Kind{domain.KindRedirect, domain.KindFile, domain.KindMarkdown, domain.KindHTML} {
		if n := report.ByKind[kind]; n > 0 {
			fmt.Println(ui.KeyValue("  "+string(kind), fmt.Sprintf("%d", n)))
		}
	}
	fmt.Println(ui.KeyValue("Expired", fmt.Sprintf("%d", report.Expired)))
	fmt.Println(ui.KeyValue("Files", fmt.Sprintf("%d", report.Files)))
	fmt.Println(ui.KeyValue("Storage", formatBytes(report.Bytes)))

	return nil
}

// writeUsageChart renders a grouped bar chart of per-user usage.
func writeUsageChart(path string, reports []services.UsageReport) error {
	users := make([]string, 0, len(reports))
	links := make([]opts.BarData, 0, len(reports))
	files := make([]opts.BarData, 0, len(reports))
	for _, r := range reports {
		users = append(users, r.Tenant)
		links = append(links, opts.BarData{Value: r.Total})
		files = append(files, opts.BarData{Value: r.Files})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "lnk usage",
			Subtitle: "links and stored files per user",
		}),
	)
	bar.SetXAxis(users).
		AddSeries("links", links).
		AddSeries("files", files)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return bar.Render(f)
}
