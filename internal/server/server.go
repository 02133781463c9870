package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/storecogs/internal/cogs"
	cogsdomain "github.com/smallbiznis/storecogs/internal/cogs/domain"
	"github.com/smallbiznis/storecogs/internal/config"
	"github.com/smallbiznis/storecogs/internal/importlog"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/internal/observability"
	obscontext "github.com/smallbiznis/storecogs/internal/observability/context"
	obsmiddleware "github.com/smallbiznis/storecogs/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/storecogs/internal/observability/metrics"
	obstracing "github.com/smallbiznis/storecogs/internal/observability/tracing"
	"github.com/smallbiznis/storecogs/internal/providers/pdf"
	"github.com/smallbiznis/storecogs/internal/ratelimit"
	"github.com/smallbiznis/storecogs/internal/sales"
	salesdomain "github.com/smallbiznis/storecogs/internal/sales/domain"
	"github.com/smallbiznis/storecogs/internal/storedir"
	storedirdomain "github.com/smallbiznis/storecogs/internal/storedir/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	ratelimit.Module,
	pdf.Module,
	importlog.Module,
	storedir.Module,
	sales.Module,
	cogs.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	policy    *config.IngestPolicyHolder
	cogsSvc   cogsdomain.Service
	storeSvc  storedirdomain.Service
	salesSvc  salesdomain.Service
	importSvc importlogdomain.Service
	limiter   *ratelimit.UploadLimiter
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Policy    *config.IngestPolicyHolder
	CogsSvc   cogsdomain.Service
	StoreSvc  storedirdomain.Service
	SalesSvc  salesdomain.Service
	ImportSvc importlogdomain.Service
	Limiter   *ratelimit.UploadLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		policy:    p.Policy,
		cogsSvc:   p.CogsSvc,
		storeSvc:  p.StoreSvc,
		salesSvc:  p.SalesSvc,
		importSvc: p.ImportSvc,
		limiter:   p.Limiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- COGS --------
	cogsAPI := api.Group("/cogs", datasetTag(importlogdomain.DatasetCogs))
	{
		cogsAPI.POST("/upload", s.uploadRateLimit(), s.UploadCogs)
		cogsAPI.GET("/all", s.ListCogs)
		cogsAPI.POST("/submit", s.SubmitCogs)
		cogsAPI.GET("/export", s.ExportCogs)
		cogsAPI.GET("/report.pdf", s.CogsWeeklyReport)
		cogsAPI.GET("/store/:storeNumber", s.GetStoreMapping)
		cogsAPI.GET("/:id", s.GetCogsByID)
		cogsAPI.DELETE("/:id", s.DeleteCogs)
	}

	// -------- Store directory --------
	storeAPI := api.Group("/store", datasetTag(importlogdomain.DatasetStores))
	{
		storeAPI.POST("/upload", s.uploadRateLimit(), s.UploadStores)
		storeAPI.GET("/all", s.ListStores)
		storeAPI.GET("/:storeNumber", s.GetStoreByNumber)
	}

	// -------- Sales --------
	salesAPI := api.Group("/sales", datasetTag(importlogdomain.DatasetSales))
	{
		salesAPI.POST("/upload", s.uploadRateLimit(), s.UploadSales)
		salesAPI.POST("/add", s.CreateSale)
		salesAPI.GET("/all", s.ListSales)
		salesAPI.GET("/export", s.ExportSales)
		salesAPI.GET("/:id", s.GetSaleByID)
		salesAPI.PUT("/:id", s.UpdateSale)
		salesAPI.DELETE("/:id", s.DeleteSale)
	}

	api.GET("/imports", s.ListImports)
}

// datasetTag labels request logs with the dataset a route belongs to.
func datasetTag(d importlogdomain.Dataset) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(obscontext.GinKeyDataset, string(d))
		c.Next()
	}
}
