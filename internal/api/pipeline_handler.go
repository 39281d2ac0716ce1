package api

import (
	"net/http"
	"sync"

	"CineStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PipelineHandler 流水线触发接口
type PipelineHandler struct {
	pipeline *service.PipelineService
	logger   *logrus.Logger
	running  sync.Mutex // 同一时刻只允许一次流水线运行
}

// NewPipelineHandler 创建 PipelineHandler
func NewPipelineHandler(pipeline *service.PipelineService, logger *logrus.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// RunPipeline 触发一次完整流水线（读取导出表→联接→补全→统计→落盘）
// @Summary 执行统计流水线
// @Success 200 {object} service.RunResult
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /pipeline/run [post]
func (h *PipelineHandler) RunPipeline(c *gin.Context) {
	if !h.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "流水线正在运行中，请稍后再试",
		})
		return
	}
	defer h.running.Unlock()

	result, err := h.pipeline.Run(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("流水线执行失败")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecomputeStats 基于已落盘的 movies.csv / credits.csv 重算统计文档，不请求TMDB
// @Summary 重算统计文档
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /pipeline/stats/recompute [post]
func (h *PipelineHandler) RecomputeStats(c *gin.Context) {
	if !h.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "流水线正在运行中，请稍后再试",
		})
		return
	}
	defer h.running.Unlock()

	years, err := h.pipeline.RecomputeStats()
	if err != nil {
		h.logger.WithError(err).Error("重算统计失败")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "统计文档已重算",
		"years_generated": years,
	})
}
