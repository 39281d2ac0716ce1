package repository

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadWatched(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "watched.csv",
		"Date,Name,Year,Letterboxd URI\n"+
			"2021-01-01,Arrival,2016,https://boxd.it/a1\n"+
			"2021-01-02,Heat,1995,https://boxd.it/b2\n")

	repo := NewExportRepository(dir, newTestLogger())
	rows, err := repo.LoadWatched()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Arrival", rows[0].Name)
	assert.Equal(t, 2016, rows[0].Year)
	assert.Equal(t, "https://boxd.it/a1", rows[0].URI)
}

func TestLoadWatched_IgnoresExtraColumns(t *testing.T) {
	dir := t.TempDir()
	// 导出格式新增列时应照常工作
	writeFile(t, dir, "watched.csv",
		"Date,Name,Year,Letterboxd URI,Extra\n"+
			"2021-01-01,Arrival,2016,https://boxd.it/a1,whatever\n")

	repo := NewExportRepository(dir, newTestLogger())
	rows, err := repo.LoadWatched()
	require.NoError(t, err)
	assert.Equal(t, "Arrival", rows[0].Name)
}

func TestLoadWatched_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "watched.csv", "Date,Name,Year\n2021-01-01,Arrival,2016\n")

	repo := NewExportRepository(dir, newTestLogger())
	_, err := repo.LoadWatched()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Letterboxd URI")
}

func TestLoadRatings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ratings.csv",
		"Date,Name,Year,Letterboxd URI,Rating\n"+
			"2021-01-01,Arrival,2016,https://boxd.it/a1,4.5\n")

	repo := NewExportRepository(dir, newTestLogger())
	rows, err := repo.LoadRatings()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://boxd.it/a1", rows[0].URI)
	assert.InDelta(t, 4.5, rows[0].Rating, 0.001)
}

func TestLoadRatings_InvalidRating(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ratings.csv",
		"Letterboxd URI,Rating\nhttps://boxd.it/a1,high\n")

	repo := NewExportRepository(dir, newTestLogger())
	_, err := repo.LoadRatings()
	require.Error(t, err)
}

func TestLoadDiary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "diary.csv",
		"Date,Name,Year,Letterboxd URI,Rating,Rewatch,Tags,Watched Date\n"+
			"2021-05-01,Arrival,2016,https://boxd.it/d1,4.5,Yes,scifi,2021-05-01\n")

	repo := NewExportRepository(dir, newTestLogger())
	rows, err := repo.LoadDiary()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Yes", rows[0].Rewatch)
	assert.Equal(t, "2021-05-01", rows[0].WatchedDate)
}

func TestLoadReviews(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "reviews.csv",
		"Date,Name,Year,Letterboxd URI,Review\n"+
			"2021-05-01,Arrival,2016,https://boxd.it/r1,Great film.\n")

	repo := NewExportRepository(dir, newTestLogger())
	rows, err := repo.LoadReviews()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Arrival", rows[0].Name)
	assert.Equal(t, 2016, rows[0].Year)
}

func TestLoad_MissingFile(t *testing.T) {
	repo := NewExportRepository(t.TempDir(), newTestLogger())
	_, err := repo.LoadWatched()
	require.Error(t, err)
}
