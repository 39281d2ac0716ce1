package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server ServerConfig `mapstructure:"server"` // 服务器配置
	Data   DataConfig   `mapstructure:"data"`   // 数据目录配置
	TMDB   TMDBConfig   `mapstructure:"tmdb"`   // TMDB元数据平台配置
	Enrich EnrichConfig `mapstructure:"enrich"` // 补全任务配置
	Stats  StatsConfig  `mapstructure:"stats"`  // 统计阈值配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DataConfig 数据目录配置
type DataConfig struct {
	ExportDir string `mapstructure:"export_dir"` // Letterboxd导出文件目录（watched/ratings/diary/reviews）
	OutputDir string `mapstructure:"output_dir"` // 生成文件目录（movies.csv / credits.csv）
	StatsDir  string `mapstructure:"stats_dir"`  // 统计文档目录（*-stats.yaml）
}

// TMDBConfig TMDB平台配置
type TMDBConfig struct {
	BaseURL        string `mapstructure:"base_url"`         // API基础地址
	Timeout        int    `mapstructure:"timeout"`          // 请求超时（秒）
	RequestDelayMs int    `mapstructure:"request_delay_ms"` // 每次请求前的固定限速延迟（毫秒）
	CacheTTLMin    int    `mapstructure:"cache_ttl_min"`    // 响应缓存有效期（分钟）
	AccessToken    string `mapstructure:"access_token"`     // Bearer凭证（建议通过环境变量注入）
	Proxy          string `mapstructure:"proxy"`            // 代理地址
}

// EnrichConfig 补全任务配置
type EnrichConfig struct {
	Concurrency int `mapstructure:"concurrency"` // 并发worker数量
	MaxCast     int `mapstructure:"max_cast"`    // 每部电影保留的演员数量上限
}

// StatsConfig 统计阈值配置
type StatsConfig struct {
	TopKDecades         int `mapstructure:"top_k_decades"`          // 最高评分年代榜长度
	MinFilmsPerDecade   int `mapstructure:"min_films_per_decade"`   // 年代参与排名的最小影片数
	MaxFilmsPerDecade   int `mapstructure:"max_films_per_decade"`   // 每个年代展示的影片数上限
	TopKRewatched       int `mapstructure:"top_k_rewatched"`        // 重看次数榜长度
	TopKHighLow         int `mapstructure:"top_k_high_low"`         // 高于/低于平均分榜长度
	TopKYearHighest     int `mapstructure:"top_k_year_highest"`     // 年度最高评分榜长度
	TopKCategory        int `mapstructure:"top_k_category"`         // 分类直方图条目数上限
	MinFilmsPerCategory int `mapstructure:"min_films_per_category"` // 分类参与均分计算的最小影片数
	MinFilmsPerYear     int `mapstructure:"min_films_per_year"`     // 年份参与均分计算的最小影片数
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	// 4. 缺省项兜底
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("TMDB_API_ACCESS_TOKEN"); v != "" {
		cfg.TMDB.AccessToken = v
	}
	if v := os.Getenv("TMDB_PROXY"); v != "" {
		cfg.TMDB.Proxy = v
	}
}

// ApplyDefaults 未配置项使用默认值（阈值默认与原始导出数据口径一致）
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Data.ExportDir == "" {
		cfg.Data.ExportDir = "data"
	}
	if cfg.Data.OutputDir == "" {
		cfg.Data.OutputDir = "generated"
	}
	if cfg.Data.StatsDir == "" {
		cfg.Data.StatsDir = "stats"
	}
	if cfg.TMDB.BaseURL == "" {
		cfg.TMDB.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.TMDB.Timeout == 0 {
		cfg.TMDB.Timeout = 10
	}
	if cfg.TMDB.RequestDelayMs == 0 {
		cfg.TMDB.RequestDelayMs = 100
	}
	if cfg.TMDB.CacheTTLMin == 0 {
		cfg.TMDB.CacheTTLMin = 30
	}
	if cfg.Enrich.Concurrency == 0 {
		cfg.Enrich.Concurrency = 10
	}
	if cfg.Enrich.MaxCast == 0 {
		cfg.Enrich.MaxCast = 10
	}
	s := &cfg.Stats
	if s.TopKDecades == 0 {
		s.TopKDecades = 3
	}
	if s.MinFilmsPerDecade == 0 {
		s.MinFilmsPerDecade = 5
	}
	if s.MaxFilmsPerDecade == 0 {
		s.MaxFilmsPerDecade = 20
	}
	if s.TopKRewatched == 0 {
		s.TopKRewatched = 10
	}
	if s.TopKHighLow == 0 {
		s.TopKHighLow = 12
	}
	if s.TopKYearHighest == 0 {
		s.TopKYearHighest = 8
	}
	if s.TopKCategory == 0 {
		s.TopKCategory = 10
	}
	if s.MinFilmsPerCategory == 0 {
		s.MinFilmsPerCategory = 3
	}
	if s.MinFilmsPerYear == 0 {
		s.MinFilmsPerYear = 3
	}
}
