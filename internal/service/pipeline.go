package service

import (
	"context"
	"fmt"
	"time"

	"CineStats/internal/interfaces"
	"CineStats/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PipelineService 全流程编排：导出表读取 → 记录联接 → 元数据补全 → 统计聚合 → 文档落盘。
// 联接完成后先落一次 movies.csv 快照，补全结束后再覆盖写入，
// 中途失败时至少保留可用的规范数据集。
type PipelineService struct {
	exportRepo interfaces.ExportSource
	docRepo    interfaces.DocumentStore
	linker     *LinkerService
	enricher   *EnrichService
	stats      *StatsService
	logger     *logrus.Logger
}

// NewPipelineService 创建流水线服务
func NewPipelineService(
	exportRepo interfaces.ExportSource,
	docRepo interfaces.DocumentStore,
	linker *LinkerService,
	enricher *EnrichService,
	stats *StatsService,
	logger *logrus.Logger,
) *PipelineService {
	return &PipelineService{
		exportRepo: exportRepo,
		docRepo:    docRepo,
		linker:     linker,
		enricher:   enricher,
		stats:      stats,
		logger:     logger,
	}
}

// RunResult 单次流水线运行结果
type RunResult struct {
	RunID          string  `json:"run_id"`
	Movies         int     `json:"movies"`          // 规范记录数
	Persons        int     `json:"persons"`         // 影人侧表行数
	EnrichSucc     int     `json:"enrich_succ"`     // 补全成功任务数
	EnrichFail     int     `json:"enrich_fail"`     // 补全失败任务数
	YearsGenerated []int   `json:"years_generated"` // 生成年度文档的年份
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Run 执行一次完整流水线
func (s *PipelineService) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.New().String()
	start := time.Now()
	s.logger.WithField("run_id", runID).Info("流水线启动")

	// 1. 读取四张导出表
	watched, err := s.exportRepo.LoadWatched()
	if err != nil {
		return nil, fmt.Errorf("读取watched.csv失败: %w", err)
	}
	ratings, err := s.exportRepo.LoadRatings()
	if err != nil {
		return nil, fmt.Errorf("读取ratings.csv失败: %w", err)
	}
	diary, err := s.exportRepo.LoadDiary()
	if err != nil {
		return nil, fmt.Errorf("读取diary.csv失败: %w", err)
	}
	reviews, err := s.exportRepo.LoadReviews()
	if err != nil {
		return nil, fmt.Errorf("读取reviews.csv失败: %w", err)
	}

	// 2. 联接为规范数据集
	movies, err := s.linker.Link(watched, ratings, diary, reviews)
	if err != nil {
		return nil, fmt.Errorf("记录联接失败: %w", err)
	}

	// 3. 先落一次未补全快照
	if err := s.docRepo.SaveMovies(movies); err != nil {
		return nil, err
	}

	// 4. 并发补全元数据，完成后覆盖写入规范数据集与影人侧表
	persons, succ, fail := s.enricher.Run(ctx, movies)
	if err := s.docRepo.SaveMovies(movies); err != nil {
		return nil, err
	}
	if err := s.docRepo.SaveCredits(persons); err != nil {
		return nil, err
	}

	// 5. 统计聚合并落盘
	years, err := s.computeAndSaveStats(movies, persons)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:          runID,
		Movies:         len(movies),
		Persons:        len(persons),
		EnrichSucc:     succ,
		EnrichFail:     fail,
		YearsGenerated: years,
		ElapsedSeconds: time.Since(start).Seconds(),
	}
	s.logger.WithField("run_id", runID).Infof("流水线完成，耗时%.3f秒，记录%d条，年度文档%d份",
		result.ElapsedSeconds, result.Movies, len(years))
	return result, nil
}

// RecomputeStats 跳过联接与补全，直接基于已落盘的 movies.csv / credits.csv 重算统计文档
// （调整统计阈值后无需重新请求TMDB）
func (s *PipelineService) RecomputeStats() ([]int, error) {
	movies, err := s.docRepo.LoadMovies()
	if err != nil {
		return nil, err
	}
	persons, err := s.docRepo.LoadCredits()
	if err != nil {
		return nil, err
	}
	return s.computeAndSaveStats(movies, persons)
}

// computeAndSaveStats 计算全期与逐年统计文档并写出
func (s *PipelineService) computeAndSaveStats(movies []*model.Movie, persons []model.Person) ([]int, error) {
	allTime := s.stats.ComputeAllTime(movies, persons)
	if err := s.docRepo.SaveAllTimeStats(allTime); err != nil {
		return nil, err
	}

	yearStats := s.stats.ComputeYears(movies, persons)
	years := make([]int, 0, len(yearStats))
	for _, ys := range yearStats {
		if err := s.docRepo.SaveYearStats(ys); err != nil {
			return nil, err
		}
		years = append(years, ys.Year)
	}
	return years, nil
}
