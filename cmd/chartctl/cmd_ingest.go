package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/internal/service/database"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// migrateCmd applies the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

// importCmd loads a chart snapshot from YAML
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Record a chart snapshot from a YAML file",
	Long: `Records a chart snapshot described in YAML. The date's previous ranks are replaced.

File format:
  date: 2024-01-08
  entries:
    - rank: 1
      tj_number: "68321"
      title_ja: 打上花火
      artist_ja: DAOKO×米津玄師`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// crawlCmd fetches today's chart from TJ Media
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Fetch today's TJ J-POP chart and record it",
	Args:  cobra.NoArgs,
	RunE:  runCrawl,
}

type chartFile struct {
	Date    string              `yaml:"date"`
	Entries []domain.ChartEntry `yaml:"entries"`
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	// Build already migrated; running again is harmless and confirms the schema
	if err := database.Migrate(ctx, container.Store); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "스키마 준비 완료 (%s)\n", container.Store.Backend())
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	day, entries, err := readChartFile(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	report, err := container.Ingester.Ingest(ctx, day, entries)
	if err != nil {
		return err
	}
	writeReport(cmd.OutOrStdout(), report)
	return nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	entries, err := container.ChartFeed.FetchChart(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("chart API returned no songs")
	}

	day := domain.Day(util.TodayKST(time.Now()))
	report, err := container.Ingester.Ingest(ctx, day, entries)
	if err != nil {
		return err
	}
	writeReport(cmd.OutOrStdout(), report)
	return nil
}

func readChartFile(r io.Reader) (domain.Day, []domain.ChartEntry, error) {
	var file chartFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return "", nil, err
	}
	day, err := domain.ParseDay(file.Date)
	if err != nil {
		return "", nil, err
	}
	if len(file.Entries) == 0 {
		return "", nil, fmt.Errorf("no entries for %s", day)
	}
	return day, file.Entries, nil
}

func writeReport(w io.Writer, r domain.IngestReport) {
	fmt.Fprintf(w, "차트 날짜: %s\n", r.Date)
	fmt.Fprintf(w, "순위 기록: %d곡\n", r.RankedSongs)
	fmt.Fprintf(w, "신규 곡: %d곡\n", r.NewSongs)
	fmt.Fprintf(w, "전체 곡: %d곡\n", r.TotalSongs)
	fmt.Fprintf(w, "미확정 곡: %d곡\n", r.PendingSongs)
}
