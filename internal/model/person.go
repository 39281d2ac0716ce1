package model

// 人员类别（与 credits.csv 的 category 列取值一致）
const (
	CategoryDirectors = "Directors"
	CategoryActors    = "Actors"
)

// Person 补全阶段产出的影人侧表记录，按四元组整行去重
type Person struct {
	ID          int64  `json:"id"`           // TMDB人员ID
	Category    string `json:"category"`     // Directors / Actors（同一人可在两个类别各出现一次）
	Name        string `json:"name"`         // 姓名
	ProfilePath string `json:"profile_path"` // 头像路径，可为空
}
