package api

import (
	"net/http"
	"strconv"

	"CineStats/internal/model"
	"CineStats/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MovieHandler 提供给前端的规范数据集与影人侧表查询接口
type MovieHandler struct {
	docRepo *repository.DocumentRepository
	logger  *logrus.Logger
}

// NewMovieHandler 创建 MovieHandler
func NewMovieHandler(docRepo *repository.DocumentRepository, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		docRepo: docRepo,
		logger:  logger,
	}
}

// ListMovies 规范数据集分页列表
// GET /api/movies?page=1&page_size=20&rated=true&logged=true
func (h *MovieHandler) ListMovies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	movies, err := h.docRepo.LoadMovies()
	if err != nil {
		h.logger.WithError(err).Error("ListMovies failed")
		c.JSON(http.StatusNotFound, gin.H{"error": "规范数据集不存在，请先执行流水线"})
		return
	}

	movies = filterMovies(movies, c)

	total := len(movies)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"items":     movies[start:end],
	})
}

// ListPeople 影人侧表，可按类别过滤
// GET /api/people?category=Directors
func (h *MovieHandler) ListPeople(c *gin.Context) {
	category := c.Query("category")

	persons, err := h.docRepo.LoadCredits()
	if err != nil {
		h.logger.WithError(err).Error("ListPeople failed")
		c.JSON(http.StatusNotFound, gin.H{"error": "影人侧表不存在，请先执行流水线"})
		return
	}

	if category != "" {
		filtered := make([]model.Person, 0, len(persons))
		for _, p := range persons {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		persons = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(persons),
		"items": persons,
	})
}

// filterMovies 按查询参数过滤（布尔参数缺省不过滤）
func filterMovies(movies []*model.Movie, c *gin.Context) []*model.Movie {
	filters := []struct {
		param string
		get   func(*model.Movie) bool
	}{
		{"rated", func(m *model.Movie) bool { return m.Rated }},
		{"logged", func(m *model.Movie) bool { return m.Logged }},
		{"reviewed", func(m *model.Movie) bool { return m.Reviewed }},
	}
	for _, f := range filters {
		v := c.Query(f.param)
		if v == "" {
			continue
		}
		want := v == "true" || v == "1"
		filtered := make([]*model.Movie, 0, len(movies))
		for _, m := range movies {
			if f.get(m) == want {
				filtered = append(filtered, m)
			}
		}
		movies = filtered
	}
	return movies
}
