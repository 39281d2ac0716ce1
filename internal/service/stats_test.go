package service

import (
	"testing"

	"CineStats/internal/config"
	"CineStats/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStatsConfig() *config.StatsConfig {
	return &config.StatsConfig{
		TopKDecades:         3,
		MinFilmsPerDecade:   5,
		MaxFilmsPerDecade:   20,
		TopKRewatched:       10,
		TopKHighLow:         12,
		TopKYearHighest:     8,
		TopKCategory:        10,
		MinFilmsPerCategory: 3,
		MinFilmsPerYear:     3,
	}
}

func newStatsService(t *testing.T) *StatsService {
	t.Helper()
	return NewStatsService(testStatsConfig(), newTestLogger())
}

// movieOpt 测试数据构造选项
type movieOpt func(*model.Movie)

func withRating(v float64) movieOpt {
	return func(m *model.Movie) {
		m.Rated = true
		m.Rating = &v
	}
}

func withDiary(watchedDate, rewatch string) movieOpt {
	return func(m *model.Movie) {
		m.Logged = true
		m.WatchedDate = watchedDate
		m.Rewatch = rewatch
	}
}

func withReviewed() movieOpt {
	return func(m *model.Movie) { m.Reviewed = true }
}

func withEnrichment(e model.Enrichment) movieOpt {
	return func(m *model.Movie) { m.Enrichment = &e }
}

func mkMovie(name string, year int, uri string, opts ...movieOpt) *model.Movie {
	m := &model.Movie{Name: name, Year: year, MovieURI: uri}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func TestMapRating(t *testing.T) {
	assert.InDelta(t, 0.5, mapRating(1), 0.001)
	assert.InDelta(t, 5.0, mapRating(10), 0.001)
	assert.InDelta(t, 3.5, mapRating(7), 0.001)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 3.33, round2(10.0/3), 0.0001)
	assert.InDelta(t, 4.5, round2(4.5), 0.0001)
}

func TestDedupByURI_KeepsFirst(t *testing.T) {
	first := mkMovie("Arrival", 2016, "u1", withRating(4.5))
	movies := []*model.Movie{
		first,
		mkMovie("Arrival", 2016, "u1"),
		mkMovie("Heat", 1995, "u2"),
	}
	deduped := dedupByURI(movies)
	require.Len(t, deduped, 2)
	assert.Same(t, first, deduped[0])
}

func TestComputeSummary(t *testing.T) {
	svc := newStatsService(t)

	movies := []*model.Movie{
		mkMovie("A", 2016, "u1", withEnrichment(model.Enrichment{
			Runtime: 90, Directors: []int64{1}, Countries: []string{"France"},
		})),
		mkMovie("B", 2017, "u2", withEnrichment(model.Enrichment{
			Runtime: 45, Directors: []int64{1, 2}, Countries: []string{"France", "Italy"},
		})),
		mkMovie("C", 2018, "u3"), // 未补全
	}

	summary := svc.computeSummary(movies)
	assert.Equal(t, 3, summary.Films)
	assert.Equal(t, 2, summary.Hours) // 135分钟整除
	assert.Equal(t, 2, summary.Directors)
	assert.Equal(t, 2, summary.Countries)
	assert.Nil(t, summary.LongestStreak)
}

func TestComputeByYear_ContiguousRange(t *testing.T) {
	svc := newStatsService(t)

	// 2000与2003之间的缺失年份补0
	movies := []*model.Movie{
		mkMovie("A", 2000, "u1"),
		mkMovie("B", 2003, "u2"),
		mkMovie("C", 2003, "u3"),
	}

	byYear := svc.computeByYear(movies)
	assert.Equal(t, []interface{}{2000, 2001, 2002, 2003}, byYear.Films.Bins)
	assert.Equal(t, []interface{}{1, 0, 0, 2}, byYear.Films.Values)
}

func TestComputeByYear_RatingBelowMinSampleIsZero(t *testing.T) {
	svc := newStatsService(t)

	movies := []*model.Movie{
		mkMovie("A", 2016, "u1", withRating(4.0)),
		mkMovie("B", 2016, "u2", withRating(5.0)),
		mkMovie("C", 2017, "u3", withRating(3.0)),
		mkMovie("D", 2017, "u4", withRating(4.0)),
		mkMovie("E", 2017, "u5", withRating(5.0)),
	}

	byYear := svc.computeByYear(movies)
	// 2016年仅2条评分，不足最小样本3，均分记0；2017年满足
	assert.Equal(t, []interface{}{0.0, 4.0}, byYear.Ratings.Values)
}

func TestComputeByYear_EmptyDataset(t *testing.T) {
	svc := newStatsService(t)
	byYear := svc.computeByYear(nil)
	assert.Empty(t, byYear.Films.Bins)
	assert.Empty(t, byYear.Ratings.Bins)
	assert.Empty(t, byYear.Diary.Bins)
}

func TestComputeHighestRatedDecades_MinSampleFilter(t *testing.T) {
	svc := newStatsService(t)

	// 2010s有5部满足门槛，1990s只有1部被整体排除
	movies := []*model.Movie{
		mkMovie("A", 2012, "u1", withRating(4.0)),
		mkMovie("B", 2013, "u2", withRating(4.5)),
		mkMovie("C", 2014, "u3", withRating(3.5)),
		mkMovie("D", 2015, "u4", withRating(5.0)),
		mkMovie("E", 2016, "u5", withRating(4.0)),
		mkMovie("F", 1995, "u6", withRating(5.0)),
	}

	decades := svc.computeHighestRatedDecades(movies)
	require.Len(t, decades, 1)
	assert.Equal(t, "2010s", decades[0].Decade)
	assert.InDelta(t, 4.2, decades[0].AverageRating, 0.001)
	// 年代内影片按评分降序
	assert.Equal(t, "D", decades[0].Movies[0].Name)
}

func TestComputeMostWatched_CountsFullDatasetAndFiltersSingles(t *testing.T) {
	svc := newStatsService(t)

	// X共3条记录（1原始+2重看），Y只有1条但误标了重看
	all := []*model.Movie{
		mkMovie("X", 2016, "ux", withDiary("2021-01-01", "Yes")),
		mkMovie("X", 2016, "ux", withDiary("2021-02-01", "Yes")),
		mkMovie("X", 2016, "ux"),
		mkMovie("Y", 2017, "uy", withDiary("2021-03-01", "Yes")),
	}
	deduped := dedupByURI(all)

	results := svc.computeMostWatched(deduped, all)
	require.Len(t, results, 1)
	assert.Equal(t, "X", results[0].Movie.Name)
	assert.Equal(t, 3, results[0].TimesRewatched)
}

func TestComputeHighAndLow(t *testing.T) {
	svc := newStatsService(t)

	movies := []*model.Movie{
		// 个人5.0 vs TMDB映射3.5 → diff +1.5
		mkMovie("Loved", 2016, "u1", withRating(5.0), withEnrichment(model.Enrichment{AverageRating: 7})),
		// 个人1.0 vs TMDB映射4.0 → diff -3.0
		mkMovie("Hated", 2017, "u2", withRating(1.0), withEnrichment(model.Enrichment{AverageRating: 8})),
		// TMDB均分为0的不参与
		mkMovie("NoAvg", 2018, "u3", withRating(3.0), withEnrichment(model.Enrichment{AverageRating: 0})),
		// 未补全的不参与
		mkMovie("Bare", 2019, "u4", withRating(3.0)),
	}

	highs, lows := svc.computeHighAndLow(movies)
	require.NotEmpty(t, highs)
	require.NotEmpty(t, lows)

	assert.Equal(t, "Loved", highs[0].Movie.Name)
	assert.InDelta(t, 1.5, highs[0].Diff, 0.001)
	assert.Equal(t, "Hated", lows[len(lows)-1].Movie.Name)
	assert.InDelta(t, -3.0, lows[len(lows)-1].Diff, 0.001)
}

func TestCategoryStats_ExplodeAndMinSample(t *testing.T) {
	svc := newStatsService(t)

	drama := model.Enrichment{Genres: []string{"Drama"}}
	both := model.Enrichment{Genres: []string{"Drama", "Crime"}}

	movies := []*model.Movie{
		mkMovie("A", 2016, "u1", withRating(4.0), withEnrichment(both)),
		mkMovie("B", 2017, "u2", withRating(5.0), withEnrichment(drama)),
		mkMovie("C", 2018, "u3", withRating(3.0), withEnrichment(drama)),
	}

	stats := svc.categoryStats(movies, "Genres", genreMembers)

	// Most_Watched按出现次数降序
	assert.Equal(t, "Genres", stats.MostWatched.BinLabel)
	assert.Equal(t, []interface{}{"Drama", "Crime"}, stats.MostWatched.Bins)
	assert.Equal(t, []interface{}{3, 1}, stats.MostWatched.Values)

	// Drama有3条评分满足最小样本，Crime只有1条记0
	assert.Equal(t, []interface{}{"Drama", "Crime"}, stats.HighestRated.Bins)
	assert.Equal(t, []interface{}{4.0, 0.0}, stats.HighestRated.Values)
}

func TestCategoryStats_PerRecordMemberDedup(t *testing.T) {
	svc := newStatsService(t)

	// 同一记录内重复成员只计1次
	movies := []*model.Movie{
		mkMovie("A", 2016, "u1", withEnrichment(model.Enrichment{Genres: []string{"Drama", "Drama"}})),
	}
	stats := svc.categoryStats(movies, "Genres", genreMembers)
	assert.Equal(t, []interface{}{1}, stats.MostWatched.Values)
}

func TestCreditsStats_ResolvesPersonRefs(t *testing.T) {
	svc := newStatsService(t)

	movies := []*model.Movie{
		mkMovie("A", 2016, "u1", withEnrichment(model.Enrichment{Directors: []int64{8452}})),
	}
	persons := []model.Person{
		{ID: 8452, Category: model.CategoryDirectors, Name: "Denis Villeneuve", ProfilePath: "/dv.jpg"},
		{ID: 8452, Category: model.CategoryActors, Name: "Denis Villeneuve"},
	}

	stats := svc.creditsStats(movies, persons, "Directors", directorMembers)
	require.Len(t, stats.MostWatched.Bins, 1)

	ref, ok := stats.MostWatched.Bins[0].(model.PersonRef)
	require.True(t, ok)
	assert.Equal(t, "Denis Villeneuve", ref.Name)
	assert.Equal(t, "/dv.jpg", ref.ProfileURI)
}

func TestComputeAllTime_SectionsPresent(t *testing.T) {
	svc := newStatsService(t)

	movies := []*model.Movie{
		mkMovie("Arrival", 2016, "u1",
			withRating(4.5),
			withDiary("2021-05-01", ""),
			withReviewed(),
			withEnrichment(model.Enrichment{
				Runtime: 116, Genres: []string{"Drama"}, Countries: []string{"USA"},
				Languages: []string{"English"}, AverageRating: 7.5, Directors: []int64{8452},
			})),
	}
	persons := []model.Person{
		{ID: 8452, Category: model.CategoryDirectors, Name: "Denis Villeneuve"},
	}

	stats := svc.ComputeAllTime(movies, persons)
	assert.Equal(t, 1, stats.Summary.Films)
	assert.Equal(t, []interface{}{2016}, stats.ByYear.Films.Bins)
	assert.Empty(t, stats.MostWatched)
	assert.Nil(t, stats.WorldMap)
}
