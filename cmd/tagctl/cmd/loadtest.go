package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

type loadConfig struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Inputs      []string
}

type loadStats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]*atomic.Int64
	statusCodesMu sync.Mutex
}

func newLoadStats() *loadStats {
	return &loadStats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]*atomic.Int64),
	}
}

func (s *loadStats) record(duration time.Duration, statusCode int, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}

	if statusCode >= 200 && statusCode < 300 {
		s.successCount.Add(1)
	} else {
		s.errorCount.Add(1)
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	if _, ok := s.statusCodes[statusCode]; !ok {
		s.statusCodes[statusCode] = &atomic.Int64{}
	}
	s.statusCodes[statusCode].Add(1)
	s.statusCodesMu.Unlock()
}

var loadCfg loadConfig

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Drive categorize and search traffic against a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadCfg
		cfg.Inputs = defaultLoadInputs
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "=== Tag Service Load Test ===")
		fmt.Fprintf(out, "Target:      %s\n", cfg.BaseURL)
		fmt.Fprintf(out, "Concurrency: %d\n", cfg.Concurrency)
		fmt.Fprintf(out, "Duration:    %s\n", cfg.Duration)
		fmt.Fprintln(out)

		stats := runLoadTest(cmd.Context(), cfg)
		return printLoadReport(out, stats, cfg.Duration)
	},
}

// Even workers categorize, odd workers search.
var defaultLoadInputs = []string{
	"long hair, blue eyes, smile",
	"1girl, solo, looking at viewer, long_hair",
	"hat, glasses, scarf, gloves",
	"outdoors, sky, cloud, tree",
	"short hair, red eyes, open mouth, blush",
}

func init() {
	loadtestCmd.Flags().StringVar(&loadCfg.BaseURL, "url", "http://localhost:5000", "base URL of the tag service")
	loadtestCmd.Flags().IntVar(&loadCfg.Concurrency, "concurrency", 10, "number of concurrent workers")
	loadtestCmd.Flags().DurationVar(&loadCfg.Duration, "duration", 30*time.Second, "test duration")
	rootCmd.AddCommand(loadtestCmd)
}

func runLoadTest(parent context.Context, cfg loadConfig) *loadStats {
	stats := newLoadStats()
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	client.SetTransport(&http.Transport{
		MaxIdleConns:        cfg.Concurrency * 2,
		MaxIdleConnsPerHost: cfg.Concurrency * 2,
		IdleConnTimeout:     90 * time.Second,
	})

	ctx, cancel := context.WithTimeout(parent, cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			idx := workerID

			for ctx.Err() == nil {
				input := cfg.Inputs[idx%len(cfg.Inputs)]
				idx++

				req := client.R().SetContext(ctx)
				var (
					resp *resty.Response
					err  error
				)
				if workerID%2 == 0 {
					resp, err = req.SetBody(map[string]any{"tags": input, "deduplicate": true}).
						Post("/api/v1/categorize")
				} else {
					first, _, _ := strings.Cut(input, ",")
					resp, err = req.SetBody(map[string]any{"query": first, "limit": 10}).
						Post("/api/v1/tags/search")
				}
				if ctx.Err() != nil {
					return
				}
				if err != nil {
					stats.record(0, 0, err)
					continue
				}
				stats.record(resp.Time(), resp.StatusCode(), nil)
			}
		}(w)
	}

	wg.Wait()
	return stats
}

func printLoadReport(out io.Writer, stats *loadStats, duration time.Duration) error {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errs := stats.errorCount.Load()

	fmt.Fprintln(out, "=== Results ===")
	fmt.Fprintf(out, "Total Requests:  %d\n", total)
	fmt.Fprintf(out, "Successful:      %d\n", success)
	fmt.Fprintf(out, "Errors:          %d\n", errs)

	if total > 0 {
		fmt.Fprintf(out, "Error Rate:      %.2f%%\n", float64(errs)/float64(total)*100)
		fmt.Fprintf(out, "Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}

	stats.latenciesMu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Fprintln(out)
		fmt.Fprintln(out, "=== Latency ===")
		fmt.Fprintf(out, "Min:    %s\n", latencies[0])
		fmt.Fprintf(out, "Avg:    %s\n", avg)
		fmt.Fprintf(out, "P50:    %s\n", latencyPercentile(latencies, 50))
		fmt.Fprintf(out, "P95:    %s\n", latencyPercentile(latencies, 95))
		fmt.Fprintf(out, "P99:    %s\n", latencyPercentile(latencies, 99))
		fmt.Fprintf(out, "Max:    %s\n", latencies[len(latencies)-1])
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Status Codes ===")
	stats.statusCodesMu.Lock()
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(out, "  %d: %d\n", code, stats.statusCodes[code].Load())
	}
	stats.statusCodesMu.Unlock()

	if total == 0 {
		return fmt.Errorf("no requests completed; is the service running at the given url?")
	}
	return nil
}

func latencyPercentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
