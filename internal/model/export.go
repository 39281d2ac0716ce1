package model

// Letterboxd 四张导出表的行结构（仅保留联接所需列，多余列忽略）

// WatchedRow watched.csv 的一行
type WatchedRow struct {
	Date string // 加入观影列表日期
	Name string // 影片名称
	Year int    // 上映年份
	URI  string // Letterboxd URI（唯一主键）
}

// RatingRow ratings.csv 的一行（与 watched 共享同一URI格式，可直接按URI联接）
type RatingRow struct {
	URI    string
	Rating float64
}

// DiaryRow diary.csv 的一行（URI是日记自身的URI，与 watched 不同，须按名称+年份解析）
type DiaryRow struct {
	Name        string
	Year        int
	Rewatch     string // "Yes" 或空
	Tags        string
	WatchedDate string // YYYY-MM-DD
}

// ReviewRow reviews.csv 的一行（同样须按名称+年份解析）
type ReviewRow struct {
	Name string
	Year int
}
