package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"CineStats/internal/model"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// movies.csv 的列顺序（多值字段以 "." 连接；缺失的数值列写0、文本列写空）
var movieColumns = []string{
	"Rated", "Logged", "Reviewed", "Date", "Name", "Year", "Movie URI",
	"Runtime", "Countries", "Genres", "Languages", "Average Rating",
	"Popularity", "Poster URI", "Directors", "Actors",
	"Rating", "Rewatch", "Tags", "Watched Date",
}

// credits.csv 的列顺序
var creditColumns = []string{"id", "category", "name", "profile_path"}

var yearStatsFile = regexp.MustCompile(`^(\d{4})-stats\.yaml$`)

// DocumentRepository 平面文档仓库：规范数据集与影人侧表写成CSV，
// 统计文档写成YAML，并支持读回给HTTP接口使用。
type DocumentRepository struct {
	outputDir string // movies.csv / credits.csv
	statsDir  string // *-stats.yaml
	logger    *logrus.Logger
}

// NewDocumentRepository 创建文档仓库
func NewDocumentRepository(outputDir, statsDir string, logger *logrus.Logger) *DocumentRepository {
	return &DocumentRepository{outputDir: outputDir, statsDir: statsDir, logger: logger}
}

// SaveMovies 写出规范数据集 movies.csv
func (r *DocumentRepository) SaveMovies(movies []*model.Movie) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	records := make([][]string, 0, len(movies)+1)
	records = append(records, movieColumns)
	for _, m := range movies {
		records = append(records, movieRecord(m))
	}
	if err := r.writeCSV(filepath.Join(r.outputDir, "movies.csv"), records); err != nil {
		return err
	}
	r.logger.Infof("已写出 movies.csv 共%d条记录", len(movies))
	return nil
}

// SaveCredits 写出影人侧表 credits.csv（调用方保证已去重）
func (r *DocumentRepository) SaveCredits(persons []model.Person) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	records := make([][]string, 0, len(persons)+1)
	records = append(records, creditColumns)
	for _, p := range persons {
		records = append(records, []string{
			strconv.FormatInt(p.ID, 10), p.Category, p.Name, p.ProfilePath,
		})
	}
	if err := r.writeCSV(filepath.Join(r.outputDir, "credits.csv"), records); err != nil {
		return err
	}
	r.logger.Infof("已写出 credits.csv 共%d条记录", len(persons))
	return nil
}

// SaveAllTimeStats 写出全期统计文档 all-time-stats.yaml
func (r *DocumentRepository) SaveAllTimeStats(stats *model.AllTimeStats) error {
	return r.writeYAML("all-time-stats.yaml", stats)
}

// SaveYearStats 写出年度统计文档 <year>-stats.yaml
func (r *DocumentRepository) SaveYearStats(stats *model.YearStats) error {
	return r.writeYAML(fmt.Sprintf("%d-stats.yaml", stats.Year), stats)
}

// LoadMovies 读回规范数据集（HTTP接口用）
func (r *DocumentRepository) LoadMovies() ([]*model.Movie, error) {
	f, err := os.Open(filepath.Join(r.outputDir, "movies.csv"))
	if err != nil {
		return nil, fmt.Errorf("打开movies.csv失败: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析movies.csv失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("movies.csv为空文件")
	}
	index := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		index[col] = i
	}

	at := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	movies := make([]*model.Movie, 0, len(records)-1)
	for _, rec := range records[1:] {
		year, _ := strconv.Atoi(at(rec, "Year"))
		m := &model.Movie{
			Rated:       at(rec, "Rated") == "True",
			Logged:      at(rec, "Logged") == "True",
			Reviewed:    at(rec, "Reviewed") == "True",
			Date:        at(rec, "Date"),
			Name:        at(rec, "Name"),
			Year:        year,
			MovieURI:    at(rec, "Movie URI"),
			Rewatch:     at(rec, "Rewatch"),
			Tags:        at(rec, "Tags"),
			WatchedDate: at(rec, "Watched Date"),
		}
		if v := at(rec, "Rating"); v != "" {
			if rating, err := strconv.ParseFloat(v, 64); err == nil {
				m.Rating = &rating
			}
		}
		// 补全字段：Runtime>0 或任一分类字段非空则视为已补全
		runtime, _ := strconv.Atoi(at(rec, "Runtime"))
		avg, _ := strconv.ParseFloat(at(rec, "Average Rating"), 64)
		pop, _ := strconv.ParseFloat(at(rec, "Popularity"), 64)
		genres := at(rec, "Genres")
		if runtime > 0 || genres != "" || at(rec, "Countries") != "" {
			m.Enrichment = &model.Enrichment{
				Runtime:       runtime,
				Countries:     model.SplitMultiValue(at(rec, "Countries")),
				Genres:        model.SplitMultiValue(genres),
				Languages:     model.SplitMultiValue(at(rec, "Languages")),
				AverageRating: avg,
				Popularity:    pop,
				PosterURI:     at(rec, "Poster URI"),
				Directors:     parseIDs(at(rec, "Directors")),
				Actors:        parseIDs(at(rec, "Actors")),
			}
		}
		movies = append(movies, m)
	}
	return movies, nil
}

// LoadCredits 读回影人侧表（HTTP接口用）
func (r *DocumentRepository) LoadCredits() ([]model.Person, error) {
	f, err := os.Open(filepath.Join(r.outputDir, "credits.csv"))
	if err != nil {
		return nil, fmt.Errorf("打开credits.csv失败: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析credits.csv失败: %w", err)
	}
	persons := make([]model.Person, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) < 4 {
			continue
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			continue
		}
		persons = append(persons, model.Person{
			ID: id, Category: rec[1], Name: rec[2], ProfilePath: rec[3],
		})
	}
	return persons, nil
}

// LoadStatsDocument 读回统计文档（all-time 或指定年份），返回通用映射给接口层
func (r *DocumentRepository) LoadStatsDocument(name string) (map[string]interface{}, error) {
	data, err := os.ReadFile(filepath.Join(r.statsDir, name))
	if err != nil {
		return nil, fmt.Errorf("读取统计文档%s失败: %w", name, err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析统计文档%s失败: %w", name, err)
	}
	return doc, nil
}

// ListStatsYears 扫描统计目录下已生成的年度文档
func (r *DocumentRepository) ListStatsYears() ([]int, error) {
	entries, err := os.ReadDir(r.statsDir)
	if err != nil {
		return nil, fmt.Errorf("读取统计目录失败: %w", err)
	}
	var years []int
	for _, e := range entries {
		m := yearStatsFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		y, _ := strconv.Atoi(m[1])
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// movieRecord 单条记录序列化（缺失值在此处兜底：数值0、文本空）
func movieRecord(m *model.Movie) []string {
	rating := ""
	if m.Rating != nil {
		rating = formatFloat(*m.Rating)
	}
	runtime, countries, genres, languages := "0", "", "", ""
	avg, pop, poster, directors, actors := "0", "0", "", "", ""
	if e := m.Enrichment; e != nil {
		runtime = strconv.Itoa(e.Runtime)
		countries = model.JoinMultiValue(e.Countries)
		genres = model.JoinMultiValue(e.Genres)
		languages = model.JoinMultiValue(e.Languages)
		avg = formatFloat(e.AverageRating)
		pop = formatFloat(e.Popularity)
		poster = e.PosterURI
		directors = model.JoinIDs(e.Directors)
		actors = model.JoinIDs(e.Actors)
	}
	return []string{
		formatBool(m.Rated), formatBool(m.Logged), formatBool(m.Reviewed),
		m.Date, m.Name, strconv.Itoa(m.Year), m.MovieURI,
		runtime, countries, genres, languages, avg, pop, poster, directors, actors,
		rating, m.Rewatch, m.Tags, m.WatchedDate,
	}
}

func (r *DocumentRepository) writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建%s失败: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("写入%s失败: %w", path, err)
	}
	return nil
}

func (r *DocumentRepository) writeYAML(filename string, doc interface{}) error {
	if err := os.MkdirAll(r.statsDir, 0o755); err != nil {
		return fmt.Errorf("创建统计目录失败: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("序列化%s失败: %w", filename, err)
	}
	path := filepath.Join(r.statsDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入%s失败: %w", filename, err)
	}
	r.logger.Infof("已写出 %s", filename)
	return nil
}

func parseIDs(s string) []int64 {
	parts := model.SplitMultiValue(s)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
