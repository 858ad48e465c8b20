package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollpulse/internal/aggregate"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteSimpleCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "summary.csv")

	w := NewCSVWriter()
	err := w.WriteSimpleCSV(path, []string{"Region", "Total"}, [][]string{
		{"Kerala", "42"},
		{"Goa", "7"},
	})
	require.NoError(t, err)

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"), "expected UTF-8 BOM prefix")
	assert.Contains(t, content, "Region,Total")
	assert.Contains(t, content, "Kerala,42")
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")

	w := NewCSVWriter()
	stream, err := w.CreateStreamWriter(path, []string{"Region", "Total"})
	require.NoError(t, err)

	require.NoError(t, stream.WriteRecord([]string{"Kerala", "1"}))
	require.NoError(t, stream.WriteRecord([]string{"Goa", "2"}))
	require.NoError(t, stream.Close())

	content := readFile(t, path)
	assert.Contains(t, content, "Goa,2")
}

func TestWriteResultsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	results := []aggregate.Result{
		{
			GroupKey:      "Kerala",
			Total:         60,
			PerBucket:     map[string]int64{"age_0_5": 60},
			Expected:      aggregate.Some(80),
			Gap:           aggregate.Some(20),
			GapRatio:      aggregate.Some(0.25),
			EnrollmentPct: aggregate.Some(75),
		},
		{
			GroupKey:  "Ghost",
			Total:     10,
			PerBucket: map[string]int64{"age_0_5": 10},
			Expected:  aggregate.Some(0),
			Gap:       aggregate.Some(-10),
			GapRatio:  aggregate.Undefined(),
		},
		{
			GroupKey:  "NoBase",
			Total:     5,
			PerBucket: map[string]int64{"age_0_5": 5},
		},
	}

	w := NewCSVWriter()
	require.NoError(t, w.WriteResultsCSV(path, results, []string{"age_0_5"}))

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(readFile(t, path), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "GroupKey,Total,age_0_5,Expected,Gap,GapRatio,EnrollmentPercentage", lines[0])
	assert.Equal(t, "Kerala,60,60,80,20,0.25,75", lines[1])
	// Undefined ratio stays distinguishable from zero, unset stays empty
	assert.Equal(t, "Ghost,10,10,0,-10,NaN,", lines[2])
	assert.Equal(t, "NoBase,5,5,,,,", lines[3])
}
