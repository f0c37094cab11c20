package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alvnz11/bunga-server/config"
	"github.com/alvnz11/bunga-server/handler"
	"github.com/alvnz11/bunga-server/middleware"
	"github.com/alvnz11/bunga-server/service"
	"github.com/alvnz11/bunga-server/store"
	"github.com/alvnz11/bunga-server/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 加载配置
	cfg := config.New()

	// 初始化日志
	if err := utils.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting flower classification server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	// 确保上传目录存在
	if err := os.MkdirAll(cfg.Upload.UploadDir, 0755); err != nil {
		utils.Logger.Fatal("failed to create upload directory", zap.Error(err))
	}

	// 初始化Redis
	redisService := service.NewRedisService(&cfg.Redis)
	ctx := context.Background()
	if err := redisService.Ping(ctx); err != nil {
		utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
	} else {
		utils.Logger.Info("redis connected successfully")
	}
	defer redisService.Close()

	// 初始化历史数据库
	historyStore, err := store.NewHistoryStore(cfg.Database.Path)
	if err != nil {
		utils.Logger.Fatal("failed to initialize history database", zap.Error(err))
	}
	defer historyStore.Close()
	utils.Logger.Info("history database initialized", zap.String("path", cfg.Database.Path))

	// 加载模型：必须在接收请求之前完成，缺失的模型以降级状态运行
	bundle := service.LoadModelBundle(cfg.Models.Dir)
	if !bundle.Ready() {
		utils.Logger.Warn("some models failed to load, predictions will be rejected until all artifacts are present",
			zap.String("models_dir", cfg.Models.Dir))
	}

	// 初始化推理服务
	classifyService := service.NewClassifyService(&cfg.Pipeline, bundle)

	// 初始化Handler
	predictHandler := handler.NewPredictHandler(cfg, redisService, classifyService, historyStore)
	historyHandler := handler.NewHistoryHandler(historyStore, bundle)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 创建路由
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// 健康检查和版本信息
	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		if !bundle.Ready() {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":               status,
			"version":              Version,
			"models_loaded":        bundle.Ready(),
			"svm_loaded":           bundle.SVM != nil,
			"knn_loaded":           bundle.KNN != nil,
			"scaler_loaded":        bundle.Scaler != nil,
			"label_encoder_loaded": bundle.Labels != nil,
			"accuracy_loaded":      bundle.Metrics != nil,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API路由
	api := r.Group("/api/v1")
	{
		api.POST("/predict", predictHandler.Predict)
		api.GET("/predict/:md5", predictHandler.GetByMD5)
		api.GET("/history", historyHandler.List)
		api.GET("/history/:id", historyHandler.GetByID)
		api.DELETE("/history/:id", historyHandler.Delete)
		api.GET("/statistics", historyHandler.Statistics)
		api.GET("/classes", historyHandler.Classes)
		api.GET("/accuracy", historyHandler.Accuracy)
	}

	// 启动服务器
	utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(cfg.Server.Port); err != nil {
		utils.Logger.Fatal("failed to start server", zap.Error(err))
	}
}
