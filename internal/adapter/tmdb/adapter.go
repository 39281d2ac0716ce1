package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"CineStats/internal/config"
	"CineStats/internal/interfaces"
	"CineStats/internal/model"
	"CineStats/internal/utils/httpclient"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Adapter TMDB元数据适配器。所有请求携带Bearer凭证，请求前经过固定间隔限速；
// 任何传输错误或非2xx响应一律按"缺失"处理，绝不向上层抛错。
type Adapter struct {
	cfg        *config.TMDBConfig
	httpClient *http.Client
	logger     *logrus.Logger
	limiter    *rate.Limiter // 客户端侧限速（每次请求前的固定延迟）
	respCache  *cache.Cache  // 响应缓存：重复的名称+年份不再重复请求
	group      singleflight.Group
}

// NewAdapter 创建TMDB适配器
func NewAdapter(cfg *config.TMDBConfig, logger *logrus.Logger) interfaces.MetadataProvider {
	delay := time.Duration(cfg.RequestDelayMs) * time.Millisecond
	ttl := time.Duration(cfg.CacheTTLMin) * time.Minute
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
		respCache:  cache.New(ttl, 2*ttl),
	}
}

// GetName 实现MetadataProvider接口
func (a *Adapter) GetName() string {
	return "TMDB"
}

// SearchMovie 按名称+年份搜索，返回首条结果的TMDB ID。
// 并发的相同搜索通过singleflight合并为一次请求（同名同年的重复记录很常见）。
func (a *Adapter) SearchMovie(ctx context.Context, name string, year int) (int64, bool) {
	key := fmt.Sprintf("search:%s:%d", name, year)
	if v, ok := a.respCache.Get(key); ok {
		return v.(int64), true
	}

	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		searchURL := fmt.Sprintf("%s/search/movie?query=%s&year=%d&page=1",
			a.cfg.BaseURL, url.QueryEscape(name), year)
		var result model.TMDBSearchResponse
		if !a.get(ctx, searchURL, &result) {
			return nil, fmt.Errorf("搜索失败")
		}
		if len(result.Results) == 0 {
			return nil, fmt.Errorf("无搜索结果")
		}
		return result.Results[0].ID, nil
	})
	if err != nil {
		a.logger.WithField("name", name).WithField("year", year).Debug("TMDB搜索未命中")
		return 0, false
	}

	id := v.(int64)
	a.respCache.SetDefault(key, id)
	return id, true
}

// FetchDetails 拉取影片详情，失败返回 nil
func (a *Adapter) FetchDetails(ctx context.Context, id int64) *model.MovieDetails {
	key := fmt.Sprintf("details:%d", id)
	if v, ok := a.respCache.Get(key); ok {
		return v.(*model.MovieDetails)
	}

	detailsURL := fmt.Sprintf("%s/movie/%d", a.cfg.BaseURL, id)
	var resp model.TMDBMovieResponse
	if !a.get(ctx, detailsURL, &resp) {
		return nil
	}

	details := &model.MovieDetails{
		TMDBID:        resp.ID,
		Genres:        namesOf(resp.Genres),
		Languages:     languagesOf(resp.SpokenLanguages),
		Countries:     namesOf(resp.ProductionCountries),
		Popularity:    resp.Popularity,
		PosterURI:     resp.PosterPath,
		Runtime:       resp.Runtime,
		AverageRating: resp.VoteAverage,
	}
	a.respCache.SetDefault(key, details)
	return details
}

// FetchCredits 拉取演职员：导演为crew中job=Director的全部条目，
// 演员取cast前maxCast条，均保持平台返回顺序
func (a *Adapter) FetchCredits(ctx context.Context, id int64, maxCast int) *model.MovieCredits {
	key := fmt.Sprintf("credits:%d:%d", id, maxCast)
	if v, ok := a.respCache.Get(key); ok {
		return v.(*model.MovieCredits)
	}

	creditsURL := fmt.Sprintf("%s/movie/%d/credits", a.cfg.BaseURL, id)
	var resp model.TMDBCreditsResponse
	if !a.get(ctx, creditsURL, &resp) {
		return nil
	}

	credits := &model.MovieCredits{}
	for _, c := range resp.Crew {
		if c.Job == "Director" {
			credits.Directors = append(credits.Directors, model.CreditPerson{
				ID: c.ID, Name: c.Name, ProfilePath: c.ProfilePath,
			})
		}
	}
	cast := resp.Cast
	if len(cast) > maxCast {
		cast = cast[:maxCast]
	}
	for _, c := range cast {
		credits.Actors = append(credits.Actors, model.CreditPerson{
			ID: c.ID, Name: c.Name, ProfilePath: c.ProfilePath,
		})
	}

	a.respCache.SetDefault(key, credits)
	return credits
}

// get 发送GET请求并解析JSON；限速等待 → 带Bearer请求 → 仅接受2xx。
// 返回false表示本次请求按缺失处理（传输错误与非2xx同等对待）。
func (a *Adapter) get(ctx context.Context, reqURL string, out interface{}) bool {
	if err := a.limiter.Wait(ctx); err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.WithError(err).WithField("url", reqURL).Debug("TMDB请求失败")
		return false
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Errorf("关闭TMDB响应体失败: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.logger.WithField("status", resp.StatusCode).WithField("url", reqURL).Debug("TMDB返回非2xx")
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		a.logger.WithError(err).WithField("url", reqURL).Debug("解析TMDB响应失败")
		return false
	}
	return true
}

func namesOf(items []model.TMDBNameItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func languagesOf(items []model.TMDBLanguage) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.EnglishName)
	}
	return out
}
