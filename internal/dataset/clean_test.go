package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "enrollpulse/internal/errors"
)

func stateMapping() FieldMapping {
	return FieldMapping{
		RegionKey: "state",
		AgeBuckets: []BucketColumn{
			{Label: "age_0_5", Column: "age_0_5"},
			{Label: "age_5_17", Column: "age_5_17"},
		},
	}
}

func TestCleanDropsEmptyRegionKey(t *testing.T) {
	header := []string{"state", "age_0_5", "age_5_17"}
	rows := [][]string{
		{"A", "5", "2"},
		{"", "10", "3"},
		{"   ", "7", "1"},
	}

	result, err := Clean(header, rows, stateMapping())
	require.NoError(t, err)

	assert.Len(t, result.Records, 1)
	assert.Equal(t, 2, result.Dropped)
	assert.Equal(t, "A", result.Records[0].RegionKey)
	assert.Equal(t, int64(5), result.Records[0].Buckets["age_0_5"])
}

func TestCleanBucketCoercion(t *testing.T) {
	tests := []struct {
		name        string
		row         []string
		wantDropped bool
		wantBuckets map[string]int64
	}{
		{
			name:        "all_buckets_numeric",
			row:         []string{"A", "5", "17"},
			wantBuckets: map[string]int64{"age_0_5": 5, "age_5_17": 17},
		},
		{
			name:        "one_bucket_fails_contributes_zero",
			row:         []string{"A", "abc", "17"},
			wantBuckets: map[string]int64{"age_0_5": 0, "age_5_17": 17},
		},
		{
			name:        "thousands_separator_accepted",
			row:         []string{"A", "1,234", "0"},
			wantBuckets: map[string]int64{"age_0_5": 1234, "age_5_17": 0},
		},
		{
			name:        "decimal_rounded",
			row:         []string{"A", "12.6", "1"},
			wantBuckets: map[string]int64{"age_0_5": 13, "age_5_17": 1},
		},
		{
			name:        "negative_fails_coercion",
			row:         []string{"A", "-4", "2"},
			wantBuckets: map[string]int64{"age_0_5": 0, "age_5_17": 2},
		},
		{
			name:        "all_buckets_fail_drops_row",
			row:         []string{"A", "x", "y"},
			wantDropped: true,
		},
	}

	header := []string{"state", "age_0_5", "age_5_17"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Clean(header, [][]string{tt.row}, stateMapping())
			require.NoError(t, err)

			if tt.wantDropped {
				assert.Empty(t, result.Records)
				assert.Equal(t, 1, result.Dropped)
				return
			}
			require.Len(t, result.Records, 1)
			assert.Equal(t, tt.wantBuckets, result.Records[0].Buckets)
		})
	}
}

func TestCleanTimestampParsing(t *testing.T) {
	mapping := DefaultDailyMapping("02-01-2006")
	header := []string{"date", "state", "age_0_5", "age_5_17", "age_18_greater"}
	rows := [][]string{
		{"15-03-2024", "Kerala", "10", "20", "5"},
		{"not-a-date", "Kerala", "10", "20", "5"},
		{"", "Kerala", "10", "20", "5"},
	}

	result, err := Clean(header, rows, mapping)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, 2, result.Dropped)
	assert.True(t, result.Records[0].HasTimestamp)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), result.Records[0].Timestamp)
}

func TestCleanRetainsDuplicateRegionDayPairs(t *testing.T) {
	mapping := DefaultDailyMapping("02-01-2006")
	header := []string{"date", "state", "age_0_5", "age_5_17", "age_18_greater"}
	rows := [][]string{
		{"15-03-2024", "Kerala", "10", "0", "0"},
		{"15-03-2024", "Kerala", "7", "0", "0"},
	}

	result, err := Clean(header, rows, mapping)
	require.NoError(t, err)

	// Two centers reporting the same day stay separate; aggregation sums them
	assert.Len(t, result.Records, 2)
	assert.Zero(t, result.Dropped)
}

func TestCleanMalformedMappingFailsFast(t *testing.T) {
	header := []string{"state", "age_0_5"}
	mapping := FieldMapping{
		RegionKey:  "state",
		AgeBuckets: []BucketColumn{{Label: "age_5_17", Column: "age_5_17"}},
	}

	_, err := Clean(header, [][]string{{"A", "1"}}, mapping)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindMalformedMapping))
}

func TestCleanTrimsWhitespaceAndBOM(t *testing.T) {
	header := []string{"\uFEFF state ", " age_0_5 "}
	mapping := FieldMapping{
		RegionKey:  "state",
		AgeBuckets: []BucketColumn{{Label: "age_0_5", Column: "age_0_5"}},
	}

	result, err := Clean(header, [][]string{{"  Kerala  ", " 42 "}}, mapping)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "Kerala", result.Records[0].RegionKey)
	assert.Equal(t, int64(42), result.Records[0].Buckets["age_0_5"])
}

func TestCleanBaseline(t *testing.T) {
	mapping := DefaultStateMapping()
	header := []string{"State Name", "Enrolment Count", "Population"}
	rows := [][]string{
		{"Kerala", "60", "1000"},
		{"Goa", "20", ""},
	}

	result, err := Clean(header, rows, mapping)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	assert.True(t, result.Records[0].HasBaseline)
	assert.Equal(t, float64(1000), result.Records[0].Baseline)
	assert.False(t, result.Records[1].HasBaseline)
}
