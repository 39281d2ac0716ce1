package model

// ========== TMDB 官方 API 响应结构 ==========

// TMDBSearchResponse GET /search/movie 的根响应
type TMDBSearchResponse struct {
	Results []TMDBSearchResult `json:"results"`
}

// TMDBSearchResult 单条搜索结果（仅取首条的 id）
type TMDBSearchResult struct {
	ID int64 `json:"id"`
}

// TMDBMovieResponse GET /movie/{id} 的响应
type TMDBMovieResponse struct {
	ID                  int64          `json:"id"`
	Genres              []TMDBNameItem `json:"genres"`
	SpokenLanguages     []TMDBLanguage `json:"spoken_languages"`
	Popularity          float64        `json:"popularity"`
	PosterPath          string         `json:"poster_path"`
	ProductionCountries []TMDBNameItem `json:"production_countries"`
	Runtime             int            `json:"runtime"`
	VoteAverage         float64        `json:"vote_average"`
}

// TMDBNameItem 带 name 字段的通用条目（genre / production_country）
type TMDBNameItem struct {
	Name string `json:"name"`
}

// TMDBLanguage 语言条目（取英文名）
type TMDBLanguage struct {
	EnglishName string `json:"english_name"`
}

// TMDBCreditsResponse GET /movie/{id}/credits 的响应
type TMDBCreditsResponse struct {
	Cast []TMDBCredit `json:"cast"`
	Crew []TMDBCredit `json:"crew"`
}

// TMDBCredit 单条演职员
type TMDBCredit struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"` // crew 专用，导演为 "Director"
	ProfilePath string `json:"profile_path"`
}

// ========== 适配器对外的规范化结构 ==========

// MovieDetails 详情接口抹平后的结构
type MovieDetails struct {
	TMDBID        int64
	Genres        []string
	Languages     []string
	Countries     []string
	Popularity    float64
	PosterURI     string
	Runtime       int
	AverageRating float64 // TMDB 1~10 分制
}

// MovieCredits 演职员接口抹平后的结构（均保持平台返回顺序）
type MovieCredits struct {
	Directors []CreditPerson
	Actors    []CreditPerson
}

// CreditPerson 单个影人
type CreditPerson struct {
	ID          int64
	Name        string
	ProfilePath string
}
