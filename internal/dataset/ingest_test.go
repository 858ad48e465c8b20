package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "enrollpulse/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "input.csv", "state,age_0_5\nKerala,10\nGoa,5\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"state", "age_0_5"}, table.Header)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, "Kerala", table.Rows[0][0])
}

func TestReadCSVStripsBOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bom.csv", "\xEF\xBB\xBFstate,age_0_5\nKerala,10\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, "state", table.Header[0])
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInputNotFound))
}

func TestDiscoverCSVFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "enrollment_b.csv", "x\n")
	writeFile(t, dir, "enrollment_a.csv", "x\n")
	writeFile(t, dir, "other.txt", "x\n")

	files, err := DiscoverCSVFiles(dir, "enrollment_*.csv")
	require.NoError(t, err)

	require.Len(t, files, 2)
	// Sorted for deterministic processing order
	assert.Equal(t, "enrollment_a.csv", filepath.Base(files[0]))
	assert.Equal(t, "enrollment_b.csv", filepath.Base(files[1]))
}

func TestDiscoverCSVFilesMissingDir(t *testing.T) {
	_, err := DiscoverCSVFiles(filepath.Join(t.TempDir(), "missing"), "*.csv")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInputNotFound))
}

func TestLoadAndClean(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "state,age_0_5\nKerala,10\n,7\n")
	b := writeFile(t, dir, "b.csv", "state,age_0_5\nGoa,5\n")

	result, err := LoadAndClean(context.Background(), []string{a, b}, stateMapping0to5())
	require.NoError(t, err)

	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Dropped)
}

func TestLoadAndCleanNoFiles(t *testing.T) {
	_, err := LoadAndClean(context.Background(), nil, stateMapping0to5())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInputNotFound))
}

func stateMapping0to5() FieldMapping {
	return FieldMapping{
		RegionKey:  "state",
		AgeBuckets: []BucketColumn{{Label: "age_0_5", Column: "age_0_5"}},
	}
}
