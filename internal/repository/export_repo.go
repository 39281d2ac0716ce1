package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"CineStats/internal/model"

	"github.com/sirupsen/logrus"
)

// ExportRepository 读取 Letterboxd 导出目录下的四张CSV表。
// 按表头定位列，导出中多余的列一律忽略。
type ExportRepository struct {
	dir    string
	logger *logrus.Logger
}

// NewExportRepository 创建导出表读取仓库
func NewExportRepository(dir string, logger *logrus.Logger) *ExportRepository {
	return &ExportRepository{dir: dir, logger: logger}
}

// LoadWatched 读取 watched.csv（列：Date, Name, Year, Letterboxd URI）
func (r *ExportRepository) LoadWatched() ([]model.WatchedRow, error) {
	table, err := r.readTable("watched.csv", []string{"Date", "Name", "Year", "Letterboxd URI"})
	if err != nil {
		return nil, err
	}
	rows := make([]model.WatchedRow, 0, len(table.rows))
	for i, rec := range table.rows {
		year, err := table.intAt(rec, "Year")
		if err != nil {
			return nil, fmt.Errorf("watched.csv 第%d行: %w", i+2, err)
		}
		rows = append(rows, model.WatchedRow{
			Date: table.at(rec, "Date"),
			Name: table.at(rec, "Name"),
			Year: year,
			URI:  table.at(rec, "Letterboxd URI"),
		})
	}
	r.logger.Infof("读取 watched.csv 共%d行", len(rows))
	return rows, nil
}

// LoadRatings 读取 ratings.csv（列：Letterboxd URI, Rating）
func (r *ExportRepository) LoadRatings() ([]model.RatingRow, error) {
	table, err := r.readTable("ratings.csv", []string{"Letterboxd URI", "Rating"})
	if err != nil {
		return nil, err
	}
	rows := make([]model.RatingRow, 0, len(table.rows))
	for i, rec := range table.rows {
		rating, err := strconv.ParseFloat(table.at(rec, "Rating"), 64)
		if err != nil {
			return nil, fmt.Errorf("ratings.csv 第%d行: 评分非法: %w", i+2, err)
		}
		rows = append(rows, model.RatingRow{
			URI:    table.at(rec, "Letterboxd URI"),
			Rating: rating,
		})
	}
	r.logger.Infof("读取 ratings.csv 共%d行", len(rows))
	return rows, nil
}

// LoadDiary 读取 diary.csv（列：Name, Year, Rewatch, Tags, Watched Date）
func (r *ExportRepository) LoadDiary() ([]model.DiaryRow, error) {
	table, err := r.readTable("diary.csv", []string{"Name", "Year", "Rewatch", "Tags", "Watched Date"})
	if err != nil {
		return nil, err
	}
	rows := make([]model.DiaryRow, 0, len(table.rows))
	for i, rec := range table.rows {
		year, err := table.intAt(rec, "Year")
		if err != nil {
			return nil, fmt.Errorf("diary.csv 第%d行: %w", i+2, err)
		}
		rows = append(rows, model.DiaryRow{
			Name:        table.at(rec, "Name"),
			Year:        year,
			Rewatch:     table.at(rec, "Rewatch"),
			Tags:        table.at(rec, "Tags"),
			WatchedDate: table.at(rec, "Watched Date"),
		})
	}
	r.logger.Infof("读取 diary.csv 共%d行", len(rows))
	return rows, nil
}

// LoadReviews 读取 reviews.csv（列：Name, Year）
func (r *ExportRepository) LoadReviews() ([]model.ReviewRow, error) {
	table, err := r.readTable("reviews.csv", []string{"Name", "Year"})
	if err != nil {
		return nil, err
	}
	rows := make([]model.ReviewRow, 0, len(table.rows))
	for i, rec := range table.rows {
		year, err := table.intAt(rec, "Year")
		if err != nil {
			return nil, fmt.Errorf("reviews.csv 第%d行: %w", i+2, err)
		}
		rows = append(rows, model.ReviewRow{
			Name: table.at(rec, "Name"),
			Year: year,
		})
	}
	r.logger.Infof("读取 reviews.csv 共%d行", len(rows))
	return rows, nil
}

// csvTable 带表头索引的CSV内容
type csvTable struct {
	index map[string]int
	rows  [][]string
}

// readTable 读取CSV并校验必需列存在
func (r *ExportRepository) readTable(filename string, required []string) (*csvTable, error) {
	path := filepath.Join(r.dir, filename)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开%s失败: %w", filename, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // 导出文件偶有缺列的行，按实际长度处理
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析%s失败: %w", filename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s为空文件", filename)
	}

	index := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		index[col] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%s缺少必需列: %s", filename, col)
		}
	}
	return &csvTable{index: index, rows: records[1:]}, nil
}

// at 取指定列的值，行长度不足时返回空串
func (t *csvTable) at(rec []string, col string) string {
	i := t.index[col]
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

// intAt 取指定列并解析为整数
func (t *csvTable) intAt(rec []string, col string) (int, error) {
	v, err := strconv.Atoi(t.at(rec, col))
	if err != nil {
		return 0, fmt.Errorf("列%s非整数: %w", col, err)
	}
	return v, nil
}
