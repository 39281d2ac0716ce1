package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"CineStats/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 按 名称+年份 返回预置结果的桩实现
type fakeProvider struct {
	mu      sync.Mutex
	results map[string]fakeResult
	calls   int
}

type fakeResult struct {
	id      int64
	details *model.MovieDetails
	credits *model.MovieCredits
}

func (f *fakeProvider) GetName() string { return "fake" }

func (f *fakeProvider) SearchMovie(_ context.Context, name string, year int) (int64, bool) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	r, ok := f.results[key(name, year)]
	if !ok {
		return 0, false
	}
	return r.id, true
}

func (f *fakeProvider) FetchDetails(_ context.Context, id int64) *model.MovieDetails {
	for _, r := range f.results {
		if r.id == id {
			return r.details
		}
	}
	return nil
}

func (f *fakeProvider) FetchCredits(_ context.Context, id int64, _ int) *model.MovieCredits {
	for _, r := range f.results {
		if r.id == id {
			return r.credits
		}
	}
	return nil
}

func key(name string, year int) string {
	return fmt.Sprintf("%s:%d", name, year)
}

func arrivalResult() fakeResult {
	return fakeResult{
		id: 329865,
		details: &model.MovieDetails{
			TMDBID:        329865,
			Genres:        []string{"Drama", "Science Fiction"},
			Languages:     []string{"English"},
			Countries:     []string{"United States of America"},
			Runtime:       116,
			AverageRating: 7.5,
			Popularity:    45.2,
			PosterURI:     "/poster.jpg",
		},
		credits: &model.MovieCredits{
			Directors: []model.CreditPerson{{ID: 8452, Name: "Denis Villeneuve"}},
			Actors:    []model.CreditPerson{{ID: 1813, Name: "Amy Adams"}},
		},
	}
}

func TestEnrichRun_AppliesResultToRecord(t *testing.T) {
	provider := &fakeProvider{results: map[string]fakeResult{
		key("Arrival", 2016): arrivalResult(),
	}}
	svc := NewEnrichService(provider, 4, 10, newTestLogger())

	movies := []*model.Movie{
		{Name: "Arrival", Year: 2016, MovieURI: "https://boxd.it/a1"},
	}
	persons, succ, fail := svc.Run(context.Background(), movies)

	assert.Equal(t, 1, succ)
	assert.Equal(t, 0, fail)
	require.NotNil(t, movies[0].Enrichment)
	assert.Equal(t, 116, movies[0].Enrichment.Runtime)
	assert.Equal(t, []string{"Drama", "Science Fiction"}, movies[0].Enrichment.Genres)
	assert.Equal(t, []int64{8452}, movies[0].Enrichment.Directors)
	assert.Equal(t, []int64{1813}, movies[0].Enrichment.Actors)

	// 影人侧表包含导演与演员各一条
	require.Len(t, persons, 2)
	assert.Equal(t, model.CategoryDirectors, persons[0].Category)
	assert.Equal(t, model.CategoryActors, persons[1].Category)
}

func TestEnrichRun_DuplicateRecordsShareResult(t *testing.T) {
	provider := &fakeProvider{results: map[string]fakeResult{
		key("Arrival", 2016): arrivalResult(),
	}}
	svc := NewEnrichService(provider, 4, 10, newTestLogger())

	// 同名同年的重复记录：两条都要被回写
	movies := []*model.Movie{
		{Name: "Arrival", Year: 2016, MovieURI: "https://boxd.it/a1"},
		{Name: "Arrival", Year: 2016, MovieURI: "https://boxd.it/a1"},
	}
	persons, _, _ := svc.Run(context.Background(), movies)

	require.NotNil(t, movies[0].Enrichment)
	require.NotNil(t, movies[1].Enrichment)

	// 影人整行去重：重复任务不产生重复行
	assert.Len(t, persons, 2)
}

func TestEnrichRun_FailureDegradesSingleRecord(t *testing.T) {
	provider := &fakeProvider{results: map[string]fakeResult{
		key("Arrival", 2016): arrivalResult(),
	}}
	svc := NewEnrichService(provider, 4, 10, newTestLogger())

	movies := []*model.Movie{
		{Name: "Arrival", Year: 2016, MovieURI: "https://boxd.it/a1"},
		{Name: "Unknown Film", Year: 1990, MovieURI: "https://boxd.it/u9"},
	}
	_, succ, fail := svc.Run(context.Background(), movies)

	// 搜索未命中只降级该条记录，不影响批次
	assert.Equal(t, 1, succ)
	assert.Equal(t, 1, fail)
	assert.NotNil(t, movies[0].Enrichment)
	assert.Nil(t, movies[1].Enrichment)
}

func TestEnrichRun_EmptyDataset(t *testing.T) {
	provider := &fakeProvider{results: map[string]fakeResult{}}
	svc := NewEnrichService(provider, 4, 10, newTestLogger())

	persons, succ, fail := svc.Run(context.Background(), nil)
	assert.Empty(t, persons)
	assert.Zero(t, succ)
	assert.Zero(t, fail)
}
