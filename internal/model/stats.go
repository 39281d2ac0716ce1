package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Histogram 直方图对象：bins 与 values 为平行序列，长度必须一致，
// 序列化后键名即 BinLabel / ValueLabel（与前端图表约定一致）
type Histogram struct {
	BinLabel   string
	Bins       []interface{}
	ValueLabel string
	Values     []interface{}
}

// NewHistogram 构建直方图，bins 与 values 长度不一致视为编程错误
func NewHistogram(binLabel string, bins []interface{}, valueLabel string, values []interface{}) (Histogram, error) {
	if len(bins) != len(values) {
		return Histogram{}, fmt.Errorf("直方图 bins(%d) 与 values(%d) 长度不一致", len(bins), len(values))
	}
	return Histogram{BinLabel: binLabel, Bins: bins, ValueLabel: valueLabel, Values: values}, nil
}

// MarshalYAML 用标签作为键名输出，保持 bins 在前 values 在后
func (h Histogram) MarshalYAML() (interface{}, error) {
	if h.BinLabel == "" {
		return nil, nil
	}
	binsNode := &yaml.Node{}
	if err := binsNode.Encode(h.Bins); err != nil {
		return nil, err
	}
	valuesNode := &yaml.Node{}
	if err := valuesNode.Encode(h.Values); err != nil {
		return nil, err
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: h.BinLabel}, binsNode,
		&yaml.Node{Kind: yaml.ScalarNode, Value: h.ValueLabel}, valuesNode,
	)
	return node, nil
}

// MarshalJSON HTTP接口输出用，与YAML同构
func (h Histogram) MarshalJSON() ([]byte, error) {
	if h.BinLabel == "" {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]interface{}{
		h.BinLabel:   h.Bins,
		h.ValueLabel: h.Values,
	})
}

// MovieRef 榜单中的影片引用
type MovieRef struct {
	Name   string `yaml:"Name" json:"Name"`
	Year   int    `yaml:"Year" json:"Year"`
	URI    string `yaml:"URI" json:"URI"`
	Poster string `yaml:"Poster" json:"Poster"`
}

// PersonRef 影人榜单条目（由人员侧表解析得到）
type PersonRef struct {
	Name       string `yaml:"Name" json:"Name"`
	ProfileURI string `yaml:"Profile URI" json:"Profile URI"`
}

// RatedMovie 影片 + 个人评分
type RatedMovie struct {
	Movie  MovieRef `yaml:"Movie" json:"Movie"`
	Rating float64  `yaml:"Rating" json:"Rating"`
}

// DiffMovie 个人评分与映射后TMDB均分的差值条目
type DiffMovie struct {
	Movie         MovieRef `yaml:"Movie" json:"Movie"`
	Rating        float64  `yaml:"Rating" json:"Rating"`
	AverageRating float64  `yaml:"Average Rating" json:"Average Rating"`
	Diff          float64  `yaml:"Diff" json:"Diff"`
}

// DecadeGroup 最高评分年代榜条目
type DecadeGroup struct {
	Decade        string     `yaml:"Decade" json:"Decade"`
	AverageRating float64    `yaml:"Average_Rating" json:"Average_Rating"`
	Movies        []MovieRef `yaml:"Movies" json:"Movies"`
}

// RewatchEntry 重看榜条目
type RewatchEntry struct {
	Movie          MovieRef `yaml:"Movie" json:"Movie"`
	TimesRewatched int      `yaml:"Times_Rewatched" json:"Times_Rewatched"`
}

// CategoryStats 分类统计（类型/国家/语言/影人通用）
type CategoryStats struct {
	MostWatched  Histogram `yaml:"Most_Watched" json:"Most_Watched"`
	HighestRated Histogram `yaml:"Highest_Rated" json:"Highest_Rated"`
}

// Milestone 里程碑条目（年度第一部/最后一部）
type Milestone struct {
	Movie MovieRef `yaml:"Movie" json:"Movie"`
	Date  string   `yaml:"Date" json:"Date"` // MM-DD（年份在文档级已知）
}

// Milestones 年度里程碑
type Milestones struct {
	First *Milestone `yaml:"First" json:"First"`
	Last  *Milestone `yaml:"Last" json:"Last"`
}

// Breakdown 年度占比拆分（三组二元拆分 + 评分分布）
type Breakdown struct {
	CurrentYearReleases map[string]int `yaml:"Current_Year_Releases" json:"Current_Year_Releases"`
	Watches             map[string]int `yaml:"Watches" json:"Watches"`
	Reviewed            map[string]int `yaml:"Reviewed" json:"Reviewed"`
	RatingsSpread       Histogram      `yaml:"Ratings_Spread" json:"Ratings_Spread"`
}

// HighAndLows 年度之最（均按TMDB数据排序，附个人评分）
type HighAndLows struct {
	HighestAverage *RatedMovie `yaml:"Highest_Average" json:"Highest_Average"`
	LowestAverage  *RatedMovie `yaml:"Lowest_Average" json:"Lowest_Average"`
	MostPopular    *RatedMovie `yaml:"Most_Popular" json:"Most_Popular"`
	MostObscure    *RatedMovie `yaml:"Most_Obscure" json:"Most_Obscure"`
}

// AllTimeSummary 全期概要
type AllTimeSummary struct {
	Films     int  `yaml:"Films" json:"Films"`
	Hours     int  `yaml:"Hours" json:"Hours"`
	Directors int  `yaml:"Directors" json:"Directors"`
	Countries int  `yaml:"Countries" json:"Countries"`
	// 声明但未实现的指标，保持 null 输出
	LongestStreak *int `yaml:"Longest_Streak" json:"Longest_Streak"`
}

// ByYearStats 按年份的三张直方图
type ByYearStats struct {
	Films   Histogram `yaml:"Films" json:"Films"`
	Ratings Histogram `yaml:"Ratings" json:"Ratings"`
	Diary   Histogram `yaml:"Diary" json:"Diary"`
}

// AllTimeStats 全期统计文档
type AllTimeStats struct {
	Summary             AllTimeSummary `yaml:"Summary" json:"Summary"`
	ByYear              ByYearStats    `yaml:"By_Year" json:"By_Year"`
	HighestRatedDecades []DecadeGroup  `yaml:"Highest_Rated_Decades" json:"Highest_Rated_Decades"`
	Genres              CategoryStats  `yaml:"Genres" json:"Genres"`
	Countries           CategoryStats  `yaml:"Countries" json:"Countries"`
	Languages           CategoryStats  `yaml:"Languages" json:"Languages"`
	MostWatched         []RewatchEntry `yaml:"Most_Watched" json:"Most_Watched"`
	RatedHigherThanAvg  []DiffMovie    `yaml:"Rated_Higher_Than_Avg" json:"Rated_Higher_Than_Avg"`
	RatedLowerThanAvg   []DiffMovie    `yaml:"Rated_Lower_Than_Avg" json:"Rated_Lower_Than_Avg"`
	Actors              CategoryStats  `yaml:"Actors" json:"Actors"`
	Directors           CategoryStats  `yaml:"Directors" json:"Directors"`
	// 声明但未实现，保持 null 输出
	WorldMap *struct{} `yaml:"World_Map" json:"World_Map"`
}

// YearSummary 年度概要（Lists/Likes/Comments 导出数据中不存在，保持 null）
type YearSummary struct {
	DiaryEntries int  `yaml:"Diary_Entries" json:"Diary_Entries"`
	Reviews      int  `yaml:"Reviews" json:"Reviews"`
	Lists        *int `yaml:"Lists" json:"Lists"`
	Likes        *int `yaml:"Likes" json:"Likes"`
	Comments     *int `yaml:"Comments" json:"Comments"`
	Hours        int  `yaml:"Hours" json:"Hours"`
}

// YearStats 年度统计文档（每个出现过的观看年份各一份）
type YearStats struct {
	Year               int            `yaml:"Year" json:"Year"`
	Summary            YearSummary    `yaml:"Summary" json:"Summary"`
	HighestRated       []RatedMovie   `yaml:"Highest_Rated" json:"Highest_Rated"`
	ByWeek             *struct{}      `yaml:"By_Week" json:"By_Week"` // 声明但未实现
	Milestones         Milestones     `yaml:"Milestones" json:"Milestones"`
	MostWatched        []RewatchEntry `yaml:"Most_Watched" json:"Most_Watched"`
	Genres             CategoryStats  `yaml:"Genres" json:"Genres"`
	Countries          CategoryStats  `yaml:"Countries" json:"Countries"`
	Languages          CategoryStats  `yaml:"Languages" json:"Languages"`
	Breakdown          Breakdown      `yaml:"Breakdown" json:"Breakdown"`
	Actors             CategoryStats  `yaml:"Actors" json:"Actors"`
	Directors          CategoryStats  `yaml:"Directors" json:"Directors"`
	HighAndLows        HighAndLows    `yaml:"High_And_Lows" json:"High_And_Lows"`
	RatedHigherThanAvg []DiffMovie    `yaml:"Rated_Higher_Than_Avg" json:"Rated_Higher_Than_Avg"`
	RatedLowerThanAvg  []DiffMovie    `yaml:"Rated_Lower_Than_Avg" json:"Rated_Lower_Than_Avg"`
}
