package router

import (
	"graphv/internal/handlers"
	"graphv/internal/metrics"
	"graphv/internal/middleware"
	"graphv/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the shared services the routes are built from.
type Deps struct {
	DB             *gorm.DB
	Graph          *services.GraphService
	Metrics        *metrics.Collector
	Log            *zap.Logger
	Intro          handlers.Intro
	MaxUploadBytes int64
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	graphHandler := handlers.NewGraphHandler(d.Graph, d.Log, d.Intro.HTML())
	uploadHandler := handlers.NewUploadHandler(d.Graph, d.Log, d.MaxUploadBytes)
	healthHandler := handlers.NewHealthHandler(d.DB)

	// 运维路由 (Ops Routes)
	r.GET("/healthz", healthHandler.Health)           // 存活检查
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler())) // Prometheus 指标

	app := r.Group("/")
	app.Use(middleware.LoadDataset(d.Graph, d.Log))
	{
		app.GET("/", graphHandler.Index)          // 上传页面 / 图谱页面
		app.POST("/upload", uploadHandler.Upload) // 上传 Excel 工作簿
		app.POST("/reset", graphHandler.Reset)    // 清除当前数据集
	}

	// 需要已加载数据集 (Dataset Required)
	loaded := app.Group("/")
	loaded.Use(middleware.DatasetRequired())
	{
		loaded.GET("/nodes", graphHandler.Node)      // 节点属性表 (?id=)
		loaded.GET("/api/graph", graphHandler.Graph) // 过滤后的图谱 JSON
	}
}
