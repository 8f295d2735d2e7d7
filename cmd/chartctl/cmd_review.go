package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"github.com/spf13/cobra"
)

var (
	suggestPending bool
	suggestLimit   int
)

// confirmCmd fixes a song's Korean title
var confirmCmd = &cobra.Command{
	Use:   "confirm [id] [title]",
	Short: "Confirm the final Korean title of a pending song",
	Long: `Sets the final Korean title of a song and marks it confirmed.
Confirmed songs appear on the chart pages and in search; this cannot be undone.

Example:
  chartctl confirm 7 "쏘아올린 불꽃"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runConfirm,
}

// suggestCmd asks the LLM for a Korean title
var suggestCmd = &cobra.Command{
	Use:   "suggest [tj-number]",
	Short: "Request an LLM title suggestion",
	Long: `Asks the configured LLM for the Korean title most people know the song by.
Each stored suggestion counts toward the daily quota (LLM_DAILY_LIMIT).

Examples:
  chartctl suggest 68321
  chartctl suggest --pending --limit 5`,
	Args: func(cmd *cobra.Command, args []string) error {
		if suggestPending {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runSuggest,
}

// usageCmd shows today's LLM quota
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show today's LLM usage against the daily quota",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestPending, "pending", false, "Suggest titles for every pending song without one")
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 0, "Maximum number of songs with --pending (0 = no limit)")
}

func runConfirm(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid song id %q", args[0])
	}
	title := strings.Join(args[1:], " ")

	ctx, cancel := commandContext(cmd)
	defer cancel()

	applied, err := container.Workflow.Confirm(ctx, id, title)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("song %d not found", id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "확정 완료: #%d %s\n", id, strings.TrimSpace(title))
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if suggestPending {
		results, err := container.Pipeline.SuggestPending(ctx, suggestLimit)
		for _, r := range results {
			writeSuggestion(cmd.OutOrStdout(), r)
		}
		return err
	}

	result, err := container.Pipeline.Suggest(ctx, args[0])
	if err != nil {
		return err
	}
	writeSuggestion(cmd.OutOrStdout(), result)
	return nil
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	used, err := container.Usage.TodayUsage(ctx)
	if err != nil {
		return err
	}
	quota := container.Config.LLM.DailyLimit
	fmt.Fprintf(cmd.OutOrStdout(), "%s (UTC) LLM 사용량: %d/%d, 남은 횟수: %d\n",
		container.Usage.Today(), used, quota, max(quota-used, 0))
	fmt.Fprintf(cmd.OutOrStdout(), "조회 시각: %s\n", util.FormatKST(time.Now(), "2006-01-02 15:04 KST"))
	return nil
}

func writeSuggestion(w io.Writer, r domain.SuggestionResult) {
	switch r.Outcome {
	case domain.SuggestionSuggested:
		fmt.Fprintf(w, "%s: %s (%s, %d/%d)\n", r.TjNumber, r.Title, r.Provider, r.Usage, r.Quota)
	case domain.SuggestionQuotaExceeded:
		fmt.Fprintf(w, "%s: 오늘 사용량 초과 (%d/%d)\n", r.TjNumber, r.Usage, r.Quota)
	default:
		fmt.Fprintf(w, "%s: %s\n", r.TjNumber, describeOutcome(r.Outcome))
	}
}

func describeOutcome(o domain.SuggestionOutcome) string {
	switch o {
	case domain.SuggestionInvalidRequest:
		return "TJ 번호가 비어 있습니다"
	case domain.SuggestionNotConfigured:
		return "GEMINI_API_KEY가 설정되지 않았습니다"
	case domain.SuggestionSongNotFound:
		return "곡을 찾을 수 없습니다"
	case domain.SuggestionEmptyResponse:
		return "LLM이 빈 응답을 반환했습니다"
	case domain.SuggestionUpstreamFailure:
		return "LLM 요청 실패"
	case domain.SuggestionInFlight:
		return "이미 요청 처리 중입니다"
	default:
		return o.String()
	}
}
