package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/settings"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/storage/filestore"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestConvertThenCategorize(t *testing.T) {
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "tags.xlsx")
	vocab := filepath.Join(dir, "vocabulary.json")
	conf := filepath.Join(dir, "defaults_config.json")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"english", "category", "subcategory", "chinese"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Long_Hair", "Hair", "Style", "长发"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"blue eyes", "Eyes", "Color", "蓝眼"}))
	require.NoError(t, f.SaveAs(xlsx))
	require.NoError(t, f.Close())

	out := execute(t, "convert", "--in", xlsx, "--out", vocab)
	assert.Contains(t, out, "converted 2 of 2 rows")

	records, err := filestore.New(vocab).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, vocabulary.Record{Tag: "long_hair", Category: "Hair", Subcategory: "Style", Translation: "长发"}, records[0])

	require.NoError(t, settings.New(conf).Save(settings.Document{
		Mapping: [][]string{{"Eyes", "Color", "Face"}},
		Order:   []string{"Face"},
	}))

	out = execute(t, "categorize", "--vocab", vocab, "--settings", conf, "--tags", "long hair, blue_eyes, ???")
	assert.JSONEq(t, `{
		"Face": [{"tag": "blue_eyes", "trans": "蓝眼"}],
		"Hair": [{"tag": "long hair", "trans": "长发"}],
		"misc": [{"tag": "???", "trans": ""}]
	}`, out)
	assert.Less(t, bytes.Index([]byte(out), []byte(`"Face"`)), bytes.Index([]byte(out), []byte(`"Hair"`)))

	out = execute(t, "structure", "--vocab", vocab)
	assert.JSONEq(t, `{"Eyes": ["Color"], "Hair": ["Style"]}`, out)
}

func TestLoadTestAgainstStubServer(t *testing.T) {
	var categorize, search atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/categorize":
			categorize.Add(1)
		case "/api/v1/tags/search":
			search.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	stats := runLoadTest(context.Background(), loadConfig{
		BaseURL:     srv.URL,
		Concurrency: 2,
		Duration:    200 * time.Millisecond,
		Inputs:      defaultLoadInputs,
	})

	var out strings.Builder
	require.NoError(t, printLoadReport(&out, stats, 200*time.Millisecond))
	assert.Positive(t, categorize.Load())
	assert.Positive(t, search.Load())
	assert.Contains(t, out.String(), "  200: ")
	assert.Equal(t, int64(0), stats.errorCount.Load())
}

func TestLoadReportFailsWithoutRequests(t *testing.T) {
	var out strings.Builder
	assert.Error(t, printLoadReport(&out, newLoadStats(), time.Second))
}

func TestLatencyPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(5), latencyPercentile(sorted, 50))
	assert.Equal(t, time.Duration(10), latencyPercentile(sorted, 99))
	assert.Equal(t, time.Duration(0), latencyPercentile(nil, 50))
}
