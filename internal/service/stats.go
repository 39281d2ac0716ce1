package service

import (
	"math"
	"sort"
	"strconv"

	"CineStats/internal/config"
	"CineStats/internal/model"

	"github.com/sirupsen/logrus"
)

// StatsService 聚合统计引擎：一组相互独立的纯转换，
// 输入补全后的数据集（可选按年份预过滤），输出嵌套统计文档。
// 统计口径统一遵循：最小样本过滤、Top-K截断（并列按输入顺序稳定排序）、
// 多值字段按成员展开、TMDB分制线性映射、输出数值保留两位小数。
type StatsService struct {
	cfg    *config.StatsConfig
	logger *logrus.Logger
}

// NewStatsService 创建统计引擎
func NewStatsService(cfg *config.StatsConfig, logger *logrus.Logger) *StatsService {
	return &StatsService{cfg: cfg, logger: logger}
}

// ComputeAllTime 计算全期统计文档。
// all 为完整规范数据集（可能含同URI重复记录，重看计数依赖它）；
// 除重看榜外的统计均在按URI去重后的视图上进行。
func (s *StatsService) ComputeAllTime(all []*model.Movie, persons []model.Person) *model.AllTimeStats {
	movies := dedupByURI(all)

	stats := &model.AllTimeStats{
		Summary:             s.computeSummary(movies),
		ByYear:              s.computeByYear(movies),
		HighestRatedDecades: s.computeHighestRatedDecades(movies),
		Genres:              s.categoryStats(movies, "Genres", genreMembers),
		Countries:           s.categoryStats(movies, "Countries", countryMembers),
		Languages:           s.categoryStats(movies, "Languages", languageMembers),
		MostWatched:         s.computeMostWatched(movies, all),
		Actors:              s.creditsStats(movies, persons, "Actors", actorMembers),
		Directors:           s.creditsStats(movies, persons, "Directors", directorMembers),
	}
	stats.RatedHigherThanAvg, stats.RatedLowerThanAvg = s.computeHighAndLow(movies)
	return stats
}

// computeSummary 全期概要：影片数、总时长（小时）、去重后的导演数与国家数
func (s *StatsService) computeSummary(movies []*model.Movie) model.AllTimeSummary {
	totalMinutes := 0
	directors := make(map[string]struct{})
	countries := make(map[string]struct{})
	for _, m := range movies {
		totalMinutes += m.Runtime()
		for _, d := range directorMembers(m) {
			directors[d] = struct{}{}
		}
		for _, c := range countryMembers(m) {
			countries[c] = struct{}{}
		}
	}
	return model.AllTimeSummary{
		Films:     len(movies),
		Hours:     totalMinutes / 60,
		Directors: len(directors),
		Countries: len(countries),
	}
}

// computeByYear 按年份的三张直方图：上映年份分布、逐年均分（样本不足记0）、逐年日记数
func (s *StatsService) computeByYear(movies []*model.Movie) model.ByYearStats {
	out := model.ByYearStats{
		Films:   emptyHistogram("Year", "Count"),
		Ratings: emptyHistogram("Year", "Rating"),
		Diary:   emptyHistogram("Year", "Count"),
	}
	if len(movies) == 0 {
		return out
	}

	// 上映年份取连续区间，缺失年份计0
	minYear, maxYear := movies[0].Year, movies[0].Year
	filmCounts := make(map[int]int)
	type ratingAgg struct {
		count int
		sum   float64
	}
	ratingByYear := make(map[int]*ratingAgg)
	for _, m := range movies {
		if m.Year < minYear {
			minYear = m.Year
		}
		if m.Year > maxYear {
			maxYear = m.Year
		}
		filmCounts[m.Year]++
		if m.Rated && m.Rating != nil {
			a := ratingByYear[m.Year]
			if a == nil {
				a = &ratingAgg{}
				ratingByYear[m.Year] = a
			}
			a.count++
			a.sum += *m.Rating
		}
	}

	films := newHistBuilder()
	ratings := newHistBuilder()
	for y := minYear; y <= maxYear; y++ {
		films.add(y, filmCounts[y])
		avg := 0.0
		if a := ratingByYear[y]; a != nil && a.count >= s.cfg.MinFilmsPerYear {
			avg = round2(a.sum / float64(a.count))
		}
		ratings.add(y, avg)
	}
	out.Films = films.build("Year", "Count")
	out.Ratings = ratings.build("Year", "Rating")

	// 日记按观看年份统计，同样取连续区间
	diaryCounts := make(map[int]int)
	minWatched, maxWatched := 0, 0
	for _, m := range movies {
		if !m.Logged {
			continue
		}
		y, ok := m.WatchedYear()
		if !ok {
			continue
		}
		if minWatched == 0 || y < minWatched {
			minWatched = y
		}
		if y > maxWatched {
			maxWatched = y
		}
		diaryCounts[y]++
	}
	if minWatched > 0 {
		diary := newHistBuilder()
		for y := minWatched; y <= maxWatched; y++ {
			diary.add(y, diaryCounts[y])
		}
		out.Diary = diary.build("Year", "Count")
	}
	return out
}

// computeHighestRatedDecades 最高评分年代榜：
// 仅统计已评分记录；样本数不足 MinFilmsPerDecade 的年代整体不参与排名；
// 按均分降序取前 TopKDecades，每个年代内影片按评分降序最多展示 MaxFilmsPerDecade 部
func (s *StatsService) computeHighestRatedDecades(movies []*model.Movie) []model.DecadeGroup {
	rated := filterRated(movies)

	type decadeAgg struct {
		label  string
		count  int
		sum    float64
		movies []*model.Movie
	}
	order := make([]string, 0)
	byDecade := make(map[string]*decadeAgg)
	for _, m := range rated {
		label := m.DecadeLabel()
		a := byDecade[label]
		if a == nil {
			a = &decadeAgg{label: label}
			byDecade[label] = a
			order = append(order, label)
		}
		a.count++
		a.sum += *m.Rating
		a.movies = append(a.movies, m)
	}

	eligible := make([]*decadeAgg, 0, len(order))
	for _, label := range order {
		if a := byDecade[label]; a.count >= s.cfg.MinFilmsPerDecade {
			eligible = append(eligible, a)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].sum/float64(eligible[i].count) > eligible[j].sum/float64(eligible[j].count)
	})
	if len(eligible) > s.cfg.TopKDecades {
		eligible = eligible[:s.cfg.TopKDecades]
	}

	results := make([]model.DecadeGroup, 0, len(eligible))
	for _, a := range eligible {
		items := make([]*model.Movie, len(a.movies))
		copy(items, a.movies)
		sort.SliceStable(items, func(i, j int) bool {
			return *items[i].Rating > *items[j].Rating
		})
		if len(items) > s.cfg.MaxFilmsPerDecade {
			items = items[:s.cfg.MaxFilmsPerDecade]
		}
		refs := make([]model.MovieRef, 0, len(items))
		for _, m := range items {
			refs = append(refs, movieRef(m))
		}
		results = append(results, model.DecadeGroup{
			Decade:        a.label,
			AverageRating: round2(a.sum / float64(a.count)),
			Movies:        refs,
		})
	}
	return results
}

// computeMostWatched 重看榜：只考虑 Rewatch=Yes 的记录；
// 次数为完整数据集中同URI的记录总数（含首次观看）；
// 先按次数降序截断Top-K，再剔除次数≤1的条目
func (s *StatsService) computeMostWatched(movies, all []*model.Movie) []model.RewatchEntry {
	countByURI := make(map[string]int, len(all))
	for _, m := range all {
		countByURI[m.MovieURI]++
	}

	rewatched := make([]*model.Movie, 0)
	for _, m := range movies {
		if m.Rewatch == model.RewatchYes {
			rewatched = append(rewatched, m)
		}
	}
	sort.SliceStable(rewatched, func(i, j int) bool {
		return countByURI[rewatched[i].MovieURI] > countByURI[rewatched[j].MovieURI]
	})
	if len(rewatched) > s.cfg.TopKRewatched {
		rewatched = rewatched[:s.cfg.TopKRewatched]
	}

	results := make([]model.RewatchEntry, 0, len(rewatched))
	for _, m := range rewatched {
		times := countByURI[m.MovieURI]
		if times > 1 {
			results = append(results, model.RewatchEntry{Movie: movieRef(m), TimesRewatched: times})
		}
	}
	return results
}

// computeHighAndLow 个人评分与TMDB映射均分的差值榜：
// 已评分且TMDB均分存在且非0的记录参与；按差值降序，取头尾各 TopKHighLow 条
func (s *StatsService) computeHighAndLow(movies []*model.Movie) (highs, lows []model.DiffMovie) {
	type diffEntry struct {
		movie  *model.Movie
		mapped float64
		diff   float64
	}
	entries := make([]diffEntry, 0)
	for _, m := range filterRated(movies) {
		if m.Enrichment == nil || m.Enrichment.AverageRating == 0 {
			continue
		}
		mapped := mapRating(m.Enrichment.AverageRating)
		entries = append(entries, diffEntry{
			movie:  m,
			mapped: mapped,
			diff:   round2(*m.Rating - mapped),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].diff > entries[j].diff
	})

	toDiff := func(e diffEntry) model.DiffMovie {
		return model.DiffMovie{
			Movie:         movieRef(e.movie),
			Rating:        *e.movie.Rating,
			AverageRating: e.mapped,
			Diff:          e.diff,
		}
	}
	k := s.cfg.TopKHighLow
	for i := 0; i < len(entries) && i < k; i++ {
		highs = append(highs, toDiff(entries[i]))
	}
	start := len(entries) - k
	if start < 0 {
		start = 0
	}
	for i := start; i < len(entries); i++ {
		lows = append(lows, toDiff(entries[i]))
	}
	return highs, lows
}

// categoryStats 分类统计（类型/国家/语言通用）：
// 多值字段展开为成员集合，每条记录对其所属的每个成员各计1次；
// 均分仅统计已评分记录，样本数不足 MinFilmsPerCategory 的成员记0
func (s *StatsService) categoryStats(movies []*model.Movie, label string, members func(*model.Movie) []string) model.CategoryStats {
	type memberAgg struct {
		name       string
		count      int
		ratedCount int
		ratingSum  float64
	}
	order := make([]string, 0)
	agg := make(map[string]*memberAgg)
	for _, m := range movies {
		for _, v := range uniqueMembers(members(m)) {
			a := agg[v]
			if a == nil {
				a = &memberAgg{name: v}
				agg[v] = a
				order = append(order, v)
			}
			a.count++
			if m.Rated && m.Rating != nil {
				a.ratedCount++
				a.ratingSum += *m.Rating
			}
		}
	}

	avgOf := func(a *memberAgg) float64 {
		if a.ratedCount >= s.cfg.MinFilmsPerCategory {
			return round2(a.ratingSum / float64(a.ratedCount))
		}
		return 0
	}

	byCount := make([]*memberAgg, 0, len(order))
	for _, v := range order {
		byCount = append(byCount, agg[v])
	}
	byRating := make([]*memberAgg, len(byCount))
	copy(byRating, byCount)

	sort.SliceStable(byCount, func(i, j int) bool { return byCount[i].count > byCount[j].count })
	sort.SliceStable(byRating, func(i, j int) bool { return avgOf(byRating[i]) > avgOf(byRating[j]) })

	k := s.cfg.TopKCategory
	if len(byCount) > k {
		byCount = byCount[:k]
	}
	if len(byRating) > k {
		byRating = byRating[:k]
	}

	mostWatched := newHistBuilder()
	for _, a := range byCount {
		mostWatched.add(a.name, a.count)
	}
	highestRated := newHistBuilder()
	for _, a := range byRating {
		highestRated.add(a.name, avgOf(a))
	}
	return model.CategoryStats{
		MostWatched:  mostWatched.build(label, "Count"),
		HighestRated: highestRated.build(label, "Average_Rating"),
	}
}

// creditsStats 影人统计：先按人员ID做分类统计，再经由影人侧表把ID解析为姓名+头像
func (s *StatsService) creditsStats(movies []*model.Movie, persons []model.Person, label string, members func(*model.Movie) []string) model.CategoryStats {
	category := model.CategoryActors
	if label == "Directors" {
		category = model.CategoryDirectors
	}
	index := make(map[int64]model.Person)
	for _, p := range persons {
		if p.Category != category {
			continue
		}
		if _, ok := index[p.ID]; !ok {
			index[p.ID] = p
		}
	}

	stats := s.categoryStats(movies, label, members)
	stats.MostWatched.Bins = resolvePersonBins(stats.MostWatched.Bins, index)
	stats.HighestRated.Bins = resolvePersonBins(stats.HighestRated.Bins, index)
	return stats
}

// resolvePersonBins 把ID字符串bins替换为 {Name, Profile URI} 条目
func resolvePersonBins(bins []interface{}, index map[int64]model.Person) []interface{} {
	out := make([]interface{}, 0, len(bins))
	for _, b := range bins {
		idStr, _ := b.(string)
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			out = append(out, model.PersonRef{})
			continue
		}
		p := index[id]
		out = append(out, model.PersonRef{Name: p.Name, ProfileURI: p.ProfilePath})
	}
	return out
}

// ========== 公共工具 ==========

// dedupByURI 按URI去重，保留首条（规范记录顺序即输入顺序）
func dedupByURI(movies []*model.Movie) []*model.Movie {
	seen := make(map[string]struct{}, len(movies))
	out := make([]*model.Movie, 0, len(movies))
	for _, m := range movies {
		if _, dup := seen[m.MovieURI]; dup {
			continue
		}
		seen[m.MovieURI] = struct{}{}
		out = append(out, m)
	}
	return out
}

// filterRated 过滤出已评分记录（rated ⇒ rating 存在）
func filterRated(movies []*model.Movie) []*model.Movie {
	out := make([]*model.Movie, 0, len(movies))
	for _, m := range movies {
		if m.Rated && m.Rating != nil {
			out = append(out, m)
		}
	}
	return out
}

// mapRating TMDB分制（1~10）线性映射到个人评分分制（0.5~5.0）
func mapRating(value float64) float64 {
	return 0.5 + (value-1)*(4.5/9)
}

// round2 输出数值统一保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// movieRef 构建榜单影片引用
func movieRef(m *model.Movie) model.MovieRef {
	return model.MovieRef{Name: m.Name, Year: m.Year, URI: m.MovieURI, Poster: m.PosterURI()}
}

// uniqueMembers 行内成员去重，保持出现顺序
func uniqueMembers(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// 各分类的成员访问器

func genreMembers(m *model.Movie) []string {
	if m.Enrichment == nil {
		return nil
	}
	return m.Enrichment.Genres
}

func countryMembers(m *model.Movie) []string {
	if m.Enrichment == nil {
		return nil
	}
	return m.Enrichment.Countries
}

func languageMembers(m *model.Movie) []string {
	if m.Enrichment == nil {
		return nil
	}
	return m.Enrichment.Languages
}

func directorMembers(m *model.Movie) []string {
	if m.Enrichment == nil {
		return nil
	}
	return idStrings(m.Enrichment.Directors)
}

func actorMembers(m *model.Movie) []string {
	if m.Enrichment == nil {
		return nil
	}
	return idStrings(m.Enrichment.Actors)
}

func idStrings(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}

// ========== 直方图构建 ==========

// histBuilder bins与values同步追加，保证平行序列长度一致
type histBuilder struct {
	bins   []interface{}
	values []interface{}
}

func newHistBuilder() *histBuilder {
	return &histBuilder{bins: []interface{}{}, values: []interface{}{}}
}

func (b *histBuilder) add(bin, value interface{}) {
	b.bins = append(b.bins, bin)
	b.values = append(b.values, value)
}

func (b *histBuilder) build(binLabel, valueLabel string) model.Histogram {
	return model.Histogram{BinLabel: binLabel, Bins: b.bins, ValueLabel: valueLabel, Values: b.values}
}

func emptyHistogram(binLabel, valueLabel string) model.Histogram {
	return newHistBuilder().build(binLabel, valueLabel)
}
