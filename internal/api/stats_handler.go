package api

import (
	"fmt"
	"net/http"
	"strconv"

	"CineStats/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatsHandler 提供给前端的统计文档查询接口
type StatsHandler struct {
	docRepo *repository.DocumentRepository
	logger  *logrus.Logger
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(docRepo *repository.DocumentRepository, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{
		docRepo: docRepo,
		logger:  logger,
	}
}

// ListYears 已生成年度统计文档的年份列表
// GET /api/stats/years
func (h *StatsHandler) ListYears(c *gin.Context) {
	years, err := h.docRepo.ListStatsYears()
	if err != nil {
		h.logger.WithError(err).Error("ListYears failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"years": years})
}

// GetAllTime 全期统计文档
// GET /api/stats/all-time
func (h *StatsHandler) GetAllTime(c *gin.Context) {
	doc, err := h.docRepo.LoadStatsDocument("all-time-stats.yaml")
	if err != nil {
		h.logger.WithError(err).Error("GetAllTime failed")
		c.JSON(http.StatusNotFound, gin.H{"error": "全期统计文档不存在，请先执行流水线"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// GetYear 指定年份的统计文档
// GET /api/stats/year/:year
func (h *StatsHandler) GetYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year必须为整数"})
		return
	}

	doc, err := h.docRepo.LoadStatsDocument(fmt.Sprintf("%d-stats.yaml", year))
	if err != nil {
		h.logger.WithError(err).Error("GetYear failed")
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%d年统计文档不存在", year)})
		return
	}

	c.JSON(http.StatusOK, doc)
}
