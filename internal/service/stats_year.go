package service

import (
	"fmt"
	"sort"
	"strings"

	"CineStats/internal/model"
)

// ComputeYears 为数据集中出现过的每个观看年份各生成一份年度统计文档，按年份升序。
// 年度统计的口径是日记视角：以 logged 且观看日期落在该年的记录为样本，
// 同一影片当年多次记日记算多条（Diary_Entries 即日记条数）。
func (s *StatsService) ComputeYears(all []*model.Movie, persons []model.Person) []*model.YearStats {
	years := watchedYears(all)
	results := make([]*model.YearStats, 0, len(years))
	for _, year := range years {
		results = append(results, s.computeYear(all, persons, year))
	}
	return results
}

// computeYear 单个年份的统计文档
func (s *StatsService) computeYear(all []*model.Movie, persons []model.Person, year int) *model.YearStats {
	ymovies := filterWatchedYear(all, year)

	stats := &model.YearStats{
		Year:         year,
		Summary:      s.computeYearSummary(ymovies),
		HighestRated: s.computeYearHighestRated(ymovies, year),
		Milestones:   computeMilestones(ymovies),
		MostWatched:  s.computeMostWatched(dedupByURI(ymovies), ymovies),
		Genres:       s.categoryStats(ymovies, "Genres", genreMembers),
		Countries:    s.categoryStats(ymovies, "Countries", countryMembers),
		Languages:    s.categoryStats(ymovies, "Languages", languageMembers),
		Breakdown:    computeBreakdown(ymovies, year),
		Actors:       s.creditsStats(ymovies, persons, "Actors", actorMembers),
		Directors:    s.creditsStats(ymovies, persons, "Directors", directorMembers),
		HighAndLows:  computeYearHighAndLows(ymovies),
	}
	stats.RatedHigherThanAvg, stats.RatedLowerThanAvg = s.computeHighAndLow(ymovies)
	return stats
}

// computeYearSummary 年度概要：日记条数、影评数、总时长（小时）
func (s *StatsService) computeYearSummary(ymovies []*model.Movie) model.YearSummary {
	reviews, minutes := 0, 0
	for _, m := range ymovies {
		if m.Reviewed {
			reviews++
		}
		minutes += m.Runtime()
	}
	return model.YearSummary{
		DiaryEntries: len(ymovies),
		Reviews:      reviews,
		Hours:        minutes / 60,
	}
}

// computeYearHighestRated 年度最高评分榜：仅统计当年上映的影片，
// 按个人评分降序取前 TopKYearHighest，未评分的排在末尾、评分记0
func (s *StatsService) computeYearHighestRated(ymovies []*model.Movie, year int) []model.RatedMovie {
	released := make([]*model.Movie, 0)
	for _, m := range ymovies {
		if m.Year == year {
			released = append(released, m)
		}
	}
	sort.SliceStable(released, func(i, j int) bool {
		return ratingOf(released[i]) > ratingOf(released[j])
	})
	if len(released) > s.cfg.TopKYearHighest {
		released = released[:s.cfg.TopKYearHighest]
	}
	results := make([]model.RatedMovie, 0, len(released))
	for _, m := range released {
		results = append(results, model.RatedMovie{Movie: movieRef(m), Rating: ratingOf(m)})
	}
	return results
}

// computeMilestones 年度里程碑：按观看日期升序排序后的首条与末条；
// Date 只保留月-日（年份在文档级已知）
func computeMilestones(ymovies []*model.Movie) model.Milestones {
	dated := make([]*model.Movie, 0, len(ymovies))
	for _, m := range ymovies {
		if m.WatchedDate != "" {
			dated = append(dated, m)
		}
	}
	if len(dated) == 0 {
		return model.Milestones{}
	}
	// ISO日期字符串的字典序即时间序
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].WatchedDate < dated[j].WatchedDate
	})
	toMilestone := func(m *model.Movie) *model.Milestone {
		return &model.Milestone{Movie: movieRef(m), Date: monthDay(m.WatchedDate)}
	}
	return model.Milestones{
		First: toMilestone(dated[0]),
		Last:  toMilestone(dated[len(dated)-1]),
	}
}

// monthDay 从 YYYY-MM-DD 中去掉年份
func monthDay(watchedDate string) string {
	parts := strings.SplitN(watchedDate, "-", 2)
	if len(parts) < 2 {
		return watchedDate
	}
	return parts[1]
}

// computeBreakdown 年度占比拆分：三组二元拆分（各附Total）加个人评分分布直方图
func computeBreakdown(ymovies []*model.Movie, year int) model.Breakdown {
	currentYear, watches, rewatches, reviewed := 0, 0, 0, 0
	for _, m := range ymovies {
		if m.Year == year {
			currentYear++
		}
		if m.Rewatch == model.RewatchYes {
			rewatches++
		} else {
			watches++
		}
		if m.Reviewed {
			reviewed++
		}
	}
	total := len(ymovies)

	// 评分分布：0.5~5.0 固定步长0.5的桶，缺失的桶计0
	spreadCounts := make(map[float64]int)
	for _, m := range ymovies {
		if m.Rated && m.Rating != nil {
			spreadCounts[*m.Rating]++
		}
	}
	spread := newHistBuilder()
	for i := 1; i <= 10; i++ {
		bin := float64(i) * 0.5
		spread.add(bin, spreadCounts[bin])
	}

	return model.Breakdown{
		CurrentYearReleases: map[string]int{
			fmt.Sprintf("%d_Releases", year): currentYear,
			"Older":                          total - currentYear,
			"Total":                          total,
		},
		Watches: map[string]int{
			"Watches":   watches,
			"Rewatches": rewatches,
			"Total":     total,
		},
		Reviewed: map[string]int{
			"Reviewed":     reviewed,
			"Not_Reviewed": total - reviewed,
			"Total":        total,
		},
		RatingsSpread: spread.build("Rating", "Count"),
	}
}

// computeYearHighAndLows 年度之最：已评分记录按TMDB均分与热度各取最高/最低一条，
// 条目附带的评分是个人评分。未补全的记录不参与。空集时各项保持 null。
func computeYearHighAndLows(ymovies []*model.Movie) model.HighAndLows {
	rated := make([]*model.Movie, 0)
	for _, m := range filterRated(ymovies) {
		if m.Enrichment != nil {
			rated = append(rated, m)
		}
	}
	if len(rated) == 0 {
		return model.HighAndLows{}
	}

	toRated := func(m *model.Movie) *model.RatedMovie {
		return &model.RatedMovie{Movie: movieRef(m), Rating: *m.Rating}
	}

	byAverage := make([]*model.Movie, len(rated))
	copy(byAverage, rated)
	sort.SliceStable(byAverage, func(i, j int) bool {
		return byAverage[i].Enrichment.AverageRating > byAverage[j].Enrichment.AverageRating
	})

	byPopularity := make([]*model.Movie, len(rated))
	copy(byPopularity, rated)
	sort.SliceStable(byPopularity, func(i, j int) bool {
		return byPopularity[i].Enrichment.Popularity > byPopularity[j].Enrichment.Popularity
	})

	return model.HighAndLows{
		HighestAverage: toRated(byAverage[0]),
		LowestAverage:  toRated(byAverage[len(byAverage)-1]),
		MostPopular:    toRated(byPopularity[0]),
		MostObscure:    toRated(byPopularity[len(byPopularity)-1]),
	}
}

// watchedYears 数据集中出现过的观看年份，升序去重
func watchedYears(movies []*model.Movie) []int {
	seen := make(map[int]struct{})
	for _, m := range movies {
		if y, ok := m.WatchedYear(); ok {
			seen[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// filterWatchedYear 年度样本：logged 且观看日期落在该年的记录
func filterWatchedYear(movies []*model.Movie, year int) []*model.Movie {
	out := make([]*model.Movie, 0)
	for _, m := range movies {
		if !m.Logged {
			continue
		}
		if y, ok := m.WatchedYear(); ok && y == year {
			out = append(out, m)
		}
	}
	return out
}

// ratingOf 个人评分，未评分按0处理
func ratingOf(m *model.Movie) float64 {
	if m.Rating != nil {
		return *m.Rating
	}
	return 0
}
