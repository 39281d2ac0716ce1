package model

import (
	"strconv"
	"strings"
)

// RewatchYes 日记导出中 Rewatch 列的肯定值
const RewatchYes = "Yes"

// Movie 规范影片记录（观影列表每行对应一条，四张导出表联接后的唯一口径）
type Movie struct {
	// 标识字段（来自 watched.csv）
	Name     string `json:"name"`      // 影片名称
	Year     int    `json:"year"`      // 上映年份
	MovieURI string `json:"movie_uri"` // Letterboxd URI，记录的稳定主键
	Date     string `json:"date"`      // 加入观影列表的日期

	// 联接标记（三者相互独立）
	Rated    bool `json:"rated"`    // ratings.csv 中存在评分
	Logged   bool `json:"logged"`   // diary.csv 中存在日记
	Reviewed bool `json:"reviewed"` // reviews.csv 中存在影评

	// 用户数据
	Rating      *float64 `json:"rating"`       // 个人评分（0.5~5.0，步长0.5），未评分为 nil
	Rewatch     string   `json:"rewatch"`      // 日记 Rewatch 列（"Yes" 或空）
	Tags        string   `json:"tags"`         // 日记标签
	WatchedDate string   `json:"watched_date"` // 观看日期 YYYY-MM-DD，未记日记为空

	// 补全数据（TMDB），nil 表示该记录未补全
	Enrichment *Enrichment `json:"enrichment"`
}

// Enrichment TMDB补全字段（字段只会从缺失变为存在，不会被覆盖）
type Enrichment struct {
	Runtime       int      `json:"runtime"`        // 片长（分钟）
	Countries     []string `json:"countries"`      // 制片国家
	Genres        []string `json:"genres"`         // 类型
	Languages     []string `json:"languages"`      // 语言
	AverageRating float64  `json:"average_rating"` // TMDB平均分（1~10）
	Popularity    float64  `json:"popularity"`     // TMDB热度
	PosterURI     string   `json:"poster_uri"`     // 海报路径
	Directors     []int64  `json:"directors"`      // 导演的TMDB人员ID列表
	Actors        []int64  `json:"actors"`         // 演员的TMDB人员ID列表
}

// Runtime 片长（分钟），未补全时为 0
func (m *Movie) Runtime() int {
	if m.Enrichment == nil {
		return 0
	}
	return m.Enrichment.Runtime
}

// PosterURI 海报路径，未补全时为空
func (m *Movie) PosterURI() string {
	if m.Enrichment == nil {
		return ""
	}
	return m.Enrichment.PosterURI
}

// WatchedYear 观看日期中的年份；未记日记或日期非法时返回 false
func (m *Movie) WatchedYear() (int, bool) {
	if m.WatchedDate == "" {
		return 0, false
	}
	parts := strings.SplitN(m.WatchedDate, "-", 2)
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return y, true
}

// DecadeLabel 上映年份所属年代标签（如 2016 -> "2010s"）
func (m *Movie) DecadeLabel() string {
	return strconv.Itoa(m.Year/10*10) + "s"
}

// JoinMultiValue 多值字段统一用 "." 连接序列化
func JoinMultiValue(vals []string) string {
	return strings.Join(vals, ".")
}

// SplitMultiValue 反向拆分多值字段，空串返回空切片
func SplitMultiValue(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

// JoinIDs 人员ID列表序列化为 "." 连接的字符串
func JoinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ".")
}
