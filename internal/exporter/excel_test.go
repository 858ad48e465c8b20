package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"enrollpulse/internal/aggregate"
)

func TestWriteReportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	data := ReportData{
		ByRegion: []aggregate.Result{
			{GroupKey: "Kerala", Total: 60, PerBucket: map[string]int64{"age_0_5": 60}},
		},
		ByMonth: []aggregate.Result{
			{GroupKey: "2024-01", Total: 60, PerBucket: map[string]int64{"age_0_5": 60}},
		},
		Metrics:      aggregate.KeyMetrics{TotalEnrollments: 60, RegionCount: 1},
		Insights:     []aggregate.Insight{{Label: "top_region", Message: "Top performing region: Kerala with 60 enrollments"}},
		BucketLabels: []string{"age_0_5"},
	}

	require.NoError(t, WriteReportXLSX(path, data))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Overview")
	assert.Contains(t, sheets, "By Region")
	assert.Contains(t, sheets, "Monthly Trend")
	assert.Contains(t, sheets, "Insights")

	rows, err := f.GetRows("By Region")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Kerala", rows[1][0])
}
