package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/internal/service/chart"
	"github.com/spf13/cobra"
)

// chartCmd prints one confirmed chart page
var chartCmd = &cobra.Command{
	Use:   "chart [range]",
	Short: "Show confirmed songs on the latest chart",
	Long: `Shows confirmed songs of the latest chart date within a rank range.

Ranges:
  1-50    ranks 1 to 50 (default)
  51-100  ranks 51 to 100`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChart,
}

// searchCmd searches the latest chart
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search confirmed songs on the latest chart",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

// pendingCmd lists songs awaiting review
var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List songs whose Korean title is not confirmed yet",
	Args:  cobra.NoArgs,
	RunE:  runPending,
}

func runChart(cmd *cobra.Command, args []string) error {
	name := chart.Ranges[0].Name
	if len(args) == 1 {
		name = args[0]
	}
	r, ok := chart.RangeByName(name)
	if !ok {
		return fmt.Errorf("unknown range %q (use %s)", name, rangeNames())
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	latest, found, err := container.Charts.LatestDate(ctx)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(cmd.OutOrStdout(), "차트 데이터가 없습니다.")
		return nil
	}

	songs, err := container.Charts.ConfirmedSongsByRange(ctx, r.Start, r.End)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "TJ J-POP 차트 %s (%s)\n", r.Name, latest)
	writeSongs(out, songs)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	songs, err := container.Charts.SearchSongs(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(songs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "검색 결과가 없습니다.")
		return nil
	}
	writeSongs(cmd.OutOrStdout(), songs)
	return nil
}

func runPending(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	songs, err := container.Charts.PendingSongs(ctx)
	if err != nil {
		return err
	}
	if len(songs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "검수 대기 중인 곡이 없습니다.")
		return nil
	}
	writePending(cmd.OutOrStdout(), songs)
	return nil
}

func writeSongs(w io.Writer, songs []domain.RankedSong) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTJ\tTITLE\tARTIST\tORIGINAL")
	for _, s := range songs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			formatRank(s.Rank), s.TjNumber, s.DisplayTitle(), s.DisplayArtist(), s.TitleJa)
	}
	_ = tw.Flush()
}

func writePending(w io.Writer, songs []domain.RankedSong) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRANK\tTJ\tTITLE_JA\tARTIST_JA\tAUTO\tLLM")
	for _, s := range songs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, formatRank(s.Rank), s.TjNumber, s.TitleJa, s.ArtistJa,
			optional(s.TitleKoAuto), optional(s.TitleKoLLM))
	}
	_ = tw.Flush()
}

func formatRank(rank *int) string {
	if rank == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *rank)
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func rangeNames() string {
	names := make([]string, 0, len(chart.Ranges))
	for _, r := range chart.Ranges {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}
