package service

import (
	"context"
	"sync"
	"time"

	"CineStats/internal/interfaces"
	"CineStats/internal/model"

	"github.com/sirupsen/logrus"
)

// EnrichService 补全编排服务：对每条规范记录发起 搜索→详情→演职员 任务，
// 在有界worker池上并发执行，全部任务结束后（完整屏障）再统一回写。
type EnrichService struct {
	provider    interfaces.MetadataProvider
	logger      *logrus.Logger
	concurrency int // worker数量
	maxCast     int // 每部影片保留的演员上限
}

// NewEnrichService 创建补全服务
func NewEnrichService(provider interfaces.MetadataProvider, concurrency, maxCast int, logger *logrus.Logger) *EnrichService {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &EnrichService{
		provider:    provider,
		logger:      logger,
		concurrency: concurrency,
		maxCast:     maxCast,
	}
}

// enrichJob 单条记录的补全任务（只携带联接键，不持有记录引用）
type enrichJob struct {
	name string
	year int
}

// enrichOutcome 单个任务的结果；ok 要求详情与演职员同时拉取成功
type enrichOutcome struct {
	ok      bool
	name    string
	year    int
	details *model.MovieDetails
	credits *model.MovieCredits
}

// Run 并发补全全部记录。fan-out期间规范数据集快照只读；
// 结果集合是唯一的共享可变资源，由互斥锁保护并发追加；
// 回写只在屏障之后单线程进行，按 名称+年份 匹配，单任务失败只降级该条记录。
// 返回影人侧表（整行去重）与成功/失败计数。
func (s *EnrichService) Run(ctx context.Context, movies []*model.Movie) ([]model.Person, int, int) {
	start := time.Now()
	s.logger.Infof("开始补全影片元数据，共%d条记录，并发%d", len(movies), s.concurrency)

	// 1. 每条规范记录生成一个任务
	jobs := make(chan enrichJob)
	var (
		mu       sync.Mutex
		outcomes []enrichOutcome
	)

	// 2. 有界worker池 fan-out
	var wg sync.WaitGroup
	for w := 0; w < s.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				outcome := s.process(ctx, job)
				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
			}
		}()
	}
	for _, m := range movies {
		jobs <- enrichJob{name: m.Name, year: m.Year}
	}
	close(jobs)
	wg.Wait() // 完整屏障：回写前所有任务必须结束

	// 3. 统计并上报（仅诊断信息）
	succ, fail := 0, 0
	for _, o := range outcomes {
		if o.ok {
			succ++
		} else {
			fail++
		}
	}
	s.logger.Infof("补全完成，耗时%.3f秒，成功%d，失败%d", time.Since(start).Seconds(), succ, fail)

	// 4. 回写：按 名称+年份 匹配补全前快照中的全部记录（同名同年的重复记录共享结果，回写幂等）
	byNameYear := make(map[nameYearKey][]*model.Movie, len(movies))
	for _, m := range movies {
		key := nameYearKey{name: m.Name, year: m.Year}
		byNameYear[key] = append(byNameYear[key], m)
	}
	for _, o := range outcomes {
		if !o.ok {
			continue // 失败任务：记录保持未补全状态
		}
		for _, m := range byNameYear[nameYearKey{name: o.name, year: o.year}] {
			m.Enrichment = &model.Enrichment{
				Runtime:       o.details.Runtime,
				Countries:     o.details.Countries,
				Genres:        o.details.Genres,
				Languages:     o.details.Languages,
				AverageRating: o.details.AverageRating,
				Popularity:    o.details.Popularity,
				PosterURI:     o.details.PosterURI,
				Directors:     idsOf(o.credits.Directors),
				Actors:        idsOf(o.credits.Actors),
			}
		}
	}

	// 5. 影人侧表：成功任务涉及的导演/演员全部追加，最后整行去重
	persons := collectPersons(outcomes)

	return persons, succ, fail
}

// process 单任务流程：搜索未命中或任一接口失败都只降级本条记录，不中止批次
func (s *EnrichService) process(ctx context.Context, job enrichJob) enrichOutcome {
	outcome := enrichOutcome{name: job.name, year: job.year}

	id, ok := s.provider.SearchMovie(ctx, job.name, job.year)
	if !ok {
		return outcome
	}
	outcome.details = s.provider.FetchDetails(ctx, id)
	if outcome.details == nil {
		return outcome
	}
	outcome.credits = s.provider.FetchCredits(ctx, id, s.maxCast)
	outcome.ok = outcome.credits != nil
	return outcome
}

// collectPersons 汇总影人并按 (id, category, name, profile_path) 四元组整行去重，
// 同一人在导演/演员两个类别可各保留一条
func collectPersons(outcomes []enrichOutcome) []model.Person {
	seen := make(map[model.Person]struct{})
	var persons []model.Person
	for _, o := range outcomes {
		if !o.ok {
			continue
		}
		for _, c := range o.credits.Directors {
			p := model.Person{ID: c.ID, Category: model.CategoryDirectors, Name: c.Name, ProfilePath: c.ProfilePath}
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				persons = append(persons, p)
			}
		}
		for _, c := range o.credits.Actors {
			p := model.Person{ID: c.ID, Category: model.CategoryActors, Name: c.Name, ProfilePath: c.ProfilePath}
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				persons = append(persons, p)
			}
		}
	}
	return persons
}

func idsOf(persons []model.CreditPerson) []int64 {
	ids := make([]int64, 0, len(persons))
	for _, p := range persons {
		ids = append(ids, p.ID)
	}
	return ids
}
