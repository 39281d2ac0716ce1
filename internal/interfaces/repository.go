package interfaces

import "CineStats/internal/model"

// ExportSource 四张 Letterboxd 导出表的读取接口
type ExportSource interface {
	LoadWatched() ([]model.WatchedRow, error)
	LoadRatings() ([]model.RatingRow, error)
	LoadDiary() ([]model.DiaryRow, error)
	LoadReviews() ([]model.ReviewRow, error)
}

// DocumentStore 平面文档的读写接口（规范数据集 / 影人侧表 / 统计文档）
type DocumentStore interface {
	SaveMovies(movies []*model.Movie) error
	SaveCredits(persons []model.Person) error
	SaveAllTimeStats(stats *model.AllTimeStats) error
	SaveYearStats(stats *model.YearStats) error
	LoadMovies() ([]*model.Movie, error)
	LoadCredits() ([]model.Person, error)
}
