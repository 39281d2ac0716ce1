package service

import (
	"fmt"

	"CineStats/internal/model"

	"github.com/sirupsen/logrus"
)

// LinkerService 记录联接服务：把四张松散联接的导出表归并为规范影片数据集。
// watched 行与规范记录一一对应；ratings 按URI精确联接；
// diary/reviews 不共享URI格式，须按 名称+年份 解析到规范记录。
type LinkerService struct {
	logger *logrus.Logger
}

// NewLinkerService 创建联接服务
func NewLinkerService(logger *logrus.Logger) *LinkerService {
	return &LinkerService{logger: logger}
}

// Link 执行联接，watched 每行产出一条规范记录。
// diary/review 行在观影列表中找不到 名称+年份 匹配时立即报错中止：
// 这说明导出文件不一致，静默丢弃会损坏统计口径。
func (s *LinkerService) Link(
	watched []model.WatchedRow,
	ratings []model.RatingRow,
	diary []model.DiaryRow,
	reviews []model.ReviewRow,
) ([]*model.Movie, error) {
	// 1. 以 watched 为骨架建立规范记录
	movies := make([]*model.Movie, 0, len(watched))
	for _, w := range watched {
		movies = append(movies, &model.Movie{
			Date:     w.Date,
			Name:     w.Name,
			Year:     w.Year,
			MovieURI: w.URI,
		})
	}

	// 2. 构建索引：URI→记录列表（同一URI可能出现多次），名称+年份→首条记录
	// 名称+年份 存在同名同年的碰撞可能，固定取规范记录顺序的首条，保证确定性
	byURI := make(map[string][]*model.Movie, len(movies))
	byNameYear := make(map[nameYearKey]*model.Movie, len(movies))
	for _, m := range movies {
		byURI[m.MovieURI] = append(byURI[m.MovieURI], m)
		key := nameYearKey{name: m.Name, year: m.Year}
		if _, ok := byNameYear[key]; !ok {
			byNameYear[key] = m
		}
	}

	// 3. ratings：与 watched 共享URI格式，直接按URI联接
	for _, r := range ratings {
		for _, m := range byURI[r.URI] {
			rating := r.Rating
			m.Rated = true
			m.Rating = &rating
		}
	}

	// 4. diary：按 名称+年份 解析；同一影片的多条日记，首条写入字段
	for i, d := range diary {
		m, ok := byNameYear[nameYearKey{name: d.Name, year: d.Year}]
		if !ok {
			return nil, fmt.Errorf("diary.csv 第%d行: 日记影片 %s (%d) 在观影列表中不存在，导出数据不一致", i+2, d.Name, d.Year)
		}
		if !m.Logged {
			m.Logged = true
			m.Rewatch = d.Rewatch
			m.Tags = d.Tags
			m.WatchedDate = d.WatchedDate
		}
	}

	// 5. reviews：同样按 名称+年份 解析
	for i, rv := range reviews {
		m, ok := byNameYear[nameYearKey{name: rv.Name, year: rv.Year}]
		if !ok {
			return nil, fmt.Errorf("reviews.csv 第%d行: 影评影片 %s (%d) 在观影列表中不存在，导出数据不一致", i+2, rv.Name, rv.Year)
		}
		m.Reviewed = true
	}

	s.logger.Infof("联接完成：%d条观影记录，%d条评分，%d条日记，%d条影评",
		len(movies), len(ratings), len(diary), len(reviews))
	return movies, nil
}

// nameYearKey 名称+年份 联接键
type nameYearKey struct {
	name string
	year int
}
