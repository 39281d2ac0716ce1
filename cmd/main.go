package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"CineStats/internal/adapter/tmdb"
	"CineStats/internal/api"
	"CineStats/internal/config"
	"CineStats/internal/repository"
	"CineStats/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	once := flag.Bool("once", false, "执行一次完整流水线后退出（不启动HTTP服务）")
	flag.Parse()

	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.InfoLevel)
	logrusLogger.Info("配置文件加载成功")

	// 3. 初始化TMDB适配器（带限速、响应缓存与请求合并）
	provider := tmdb.NewAdapter(&cfg.TMDB, logrusLogger)

	// 4. 初始化仓库与服务
	exportRepo := repository.NewExportRepository(cfg.Data.ExportDir, logrusLogger)
	docRepo := repository.NewDocumentRepository(cfg.Data.OutputDir, cfg.Data.StatsDir, logrusLogger)
	linker := service.NewLinkerService(logrusLogger)
	enricher := service.NewEnrichService(provider, cfg.Enrich.Concurrency, cfg.Enrich.MaxCast, logrusLogger)
	stats := service.NewStatsService(&cfg.Stats, logrusLogger)
	pipeline := service.NewPipelineService(exportRepo, docRepo, linker, enricher, stats, logrusLogger)

	// 5. 批处理模式：执行一次流水线后退出
	if *once {
		result, err := pipeline.Run(context.Background())
		if err != nil {
			logrusLogger.Fatalf("流水线执行失败: %v", err)
		}
		logrusLogger.Infof("流水线完成: 记录%d条，补全成功%d失败%d，年度文档%v",
			result.Movies, result.EnrichSucc, result.EnrichFail, result.YearsGenerated)
		return
	}

	// 6. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 注册pprof 方便调试和监测性能问题
	pprof.Register(r)
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 7. 注册API路由
	pipelineHandler := api.NewPipelineHandler(pipeline, logrusLogger)
	r.POST("/pipeline/run", pipelineHandler.RunPipeline)
	r.POST("/pipeline/stats/recompute", pipelineHandler.RecomputeStats)

	// 统计文档查询接口（给前端页面用）
	statsHandler := api.NewStatsHandler(docRepo, logrusLogger)
	r.GET("/api/stats/years", statsHandler.ListYears)
	r.GET("/api/stats/all-time", statsHandler.GetAllTime)
	r.GET("/api/stats/year/:year", statsHandler.GetYear)

	// 规范数据集与影人查询接口
	movieHandler := api.NewMovieHandler(docRepo, logrusLogger)
	r.GET("/api/movies", movieHandler.ListMovies)
	r.GET("/api/people", movieHandler.ListPeople)

	// 8. 启动服务（从配置读取端口）
	port := cfg.Server.Port
	logrusLogger.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		logrusLogger.Fatalf("启动服务失败: %v", err)
	}
}
