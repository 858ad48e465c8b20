package dataset

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "enrollpulse/internal/errors"
)

// BucketColumn binds one age-bucket label to the raw column carrying its count
type BucketColumn struct {
	Label  string `validate:"required"`
	Column string `validate:"required"`
}

// FieldMapping describes how the raw columns of one source map onto the
// normalized record schema. Sources differ in naming (state summary files,
// daily per-district files, generated sample files); the mapping absorbs
// those differences so everything downstream sees one schema.
type FieldMapping struct {
	// RegionKey is the raw column holding the grouping identity
	RegionKey string `validate:"required"`
	// Timestamp is the raw column holding the record date, empty for
	// static (undated) sources
	Timestamp string
	// DateFormat is the Go reference layout used to parse Timestamp
	DateFormat string
	// AgeBuckets maps bucket labels to raw columns, in report order
	AgeBuckets []BucketColumn `validate:"required,min=1,dive"`
	// PopulationBaseline is the raw column holding the population figure
	// used for expected-enrollment ratios, empty when unavailable
	PopulationBaseline string
}

var structValidator = validator.New()

// Validate checks the mapping for internal consistency and verifies every
// referenced column exists in the given header. A missing column is fatal
// for the aggregation call; aggregating over absent columns silently is
// exactly the failure mode this check exists to prevent.
func (m FieldMapping) Validate(header []string) error {
	if err := structValidator.Struct(m); err != nil {
		return apperrors.NewConfigError("invalid field mapping", err)
	}
	if m.Timestamp != "" && m.DateFormat == "" {
		return apperrors.NewConfigError("date format required when a timestamp column is mapped", nil)
	}

	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[normalizeColumn(col)] = true
	}

	check := func(column string) error {
		if column != "" && !present[normalizeColumn(column)] {
			return apperrors.NewMalformedMapping(column)
		}
		return nil
	}

	if err := check(m.RegionKey); err != nil {
		return err
	}
	if err := check(m.Timestamp); err != nil {
		return err
	}
	if err := check(m.PopulationBaseline); err != nil {
		return err
	}
	for _, bucket := range m.AgeBuckets {
		if err := check(bucket.Column); err != nil {
			return err
		}
	}
	return nil
}

// Labels returns the bucket labels in mapping order
func (m FieldMapping) Labels() []string {
	labels := make([]string, len(m.AgeBuckets))
	for i, b := range m.AgeBuckets {
		labels[i] = b.Label
	}
	return labels
}

// columnIndex locates a mapped column in the header, -1 when absent
func columnIndex(header []string, column string) int {
	want := normalizeColumn(column)
	for i, col := range header {
		if normalizeColumn(col) == want {
			return i
		}
	}
	return -1
}

// normalizeColumn strips whitespace and the UTF-8 BOM from a column name
func normalizeColumn(col string) string {
	col = strings.TrimSpace(col)
	col = strings.TrimPrefix(col, "\uFEFF")
	return strings.TrimSpace(col)
}

// DefaultDailyMapping returns the mapping for the daily per-district
// enrollment files (date, state, district, age_0_5, age_5_17, age_18_greater)
func DefaultDailyMapping(dateFormat string) FieldMapping {
	return FieldMapping{
		RegionKey:  "state",
		Timestamp:  "date",
		DateFormat: dateFormat,
		AgeBuckets: []BucketColumn{
			{Label: "age_0_5", Column: "age_0_5"},
			{Label: "age_5_17", Column: "age_5_17"},
			{Label: "age_18_greater", Column: "age_18_greater"},
		},
	}
}

// DefaultStateMapping returns the mapping for the static state summary file
// carrying one enrollment count plus a population baseline per state
func DefaultStateMapping() FieldMapping {
	return FieldMapping{
		RegionKey: "State Name",
		AgeBuckets: []BucketColumn{
			{Label: "age_0_5", Column: "Enrolment Count"},
		},
		PopulationBaseline: "Population",
	}
}

// String returns a short description of the mapping for logging
func (m FieldMapping) String() string {
	return fmt.Sprintf("region=%s timestamp=%s buckets=%d baseline=%s",
		m.RegionKey, m.Timestamp, len(m.AgeBuckets), m.PopulationBaseline)
}
