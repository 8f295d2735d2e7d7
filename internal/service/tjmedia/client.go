package tjmedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/tj-jpop-chart-go/internal/constants"
	"github.com/kapu/tj-jpop-chart-go/internal/domain"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	"github.com/kapu/tj-jpop-chart-go/pkg/errors"
	"go.uber.org/zap"
)

// Client fetches the J-POP top chart from the TJ Media chart API.
type Client struct {
	httpClient *http.Client
	chartURL   string
	logger     *zap.Logger
	now        func() time.Time
}

func NewClient(httpClient *http.Client, chartURL string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.TJMediaConfig.Timeout}
	}
	if chartURL == "" {
		chartURL = constants.TJMediaConfig.DefaultChartURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		chartURL:   chartURL,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock that picks the requested date window.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

type chartResponse struct {
	ResultCode string `json:"resultCode"`
	ResultData struct {
		Items []chartItem `json:"items"`
	} `json:"resultData"`
}

type chartItem struct {
	Rank       flexString `json:"rank"`
	Pro        flexString `json:"pro"`
	IndexTitle string     `json:"indexTitle"`
	IndexSong  string     `json:"indexSong"`
}

// flexString accepts both JSON strings and numbers; the API is not consistent.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// FetchChart returns today's chart (KST) in rank order.
func (c *Client) FetchChart(ctx context.Context) ([]domain.ChartEntry, error) {
	now := c.now()
	form := url.Values{
		"chartType":       {"TOP"},
		"strType":         {"3"},
		"searchStartDate": {util.TodayKST(now.AddDate(0, 0, -1))},
		"searchEndDate":   {util.TodayKST(now)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chartURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8")
	req.Header.Set("User-Agent", constants.TJMediaConfig.UserAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	c.logger.Info("Requesting TJ chart",
		zap.String("url", c.chartURL),
		zap.String("start", form.Get("searchStartDate")),
		zap.String("end", form.Get("searchEndDate")),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewServiceError("chart request failed", "tjmedia", "fetch_chart", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewServiceError("failed to read chart response", "tjmedia", "fetch_chart", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewServiceError(
			fmt.Sprintf("chart API returned status %d", resp.StatusCode),
			"tjmedia", "fetch_chart", nil)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error("Failed to parse chart response",
			zap.Error(err),
			zap.String("body_preview", util.TruncateString(string(body), 200)),
		)
		return nil, errors.NewServiceError("invalid chart JSON", "tjmedia", "fetch_chart", err)
	}

	if parsed.ResultCode != constants.TJMediaConfig.SuccessCode {
		return nil, errors.NewServiceError(
			fmt.Sprintf("chart API result code %q", parsed.ResultCode),
			"tjmedia", "fetch_chart", nil)
	}

	entries := make([]domain.ChartEntry, 0, len(parsed.ResultData.Items))
	for _, item := range parsed.ResultData.Items {
		rank, err := strconv.Atoi(string(item.Rank))
		if err != nil {
			return nil, errors.NewServiceError(
				fmt.Sprintf("invalid rank %q for %s", item.Rank, item.Pro),
				"tjmedia", "fetch_chart", err)
		}
		entries = append(entries, domain.ChartEntry{
			Rank:     rank,
			TjNumber: string(item.Pro),
			TitleJa:  strings.TrimSpace(item.IndexTitle),
			ArtistJa: strings.TrimSpace(item.IndexSong),
		})
	}

	c.logger.Info("TJ chart received", zap.Int("items", len(entries)))
	return entries, nil
}
