package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"newsnexus/internal/config"
	"newsnexus/internal/metrics"
	"newsnexus/internal/service"
	"newsnexus/pkg/util"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	AuthService    *service.AuthService
	ArticleService *service.ArticleService
	ReportService  *service.ReportService
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	authService, err := service.NewAuthService(cfg.Auth, db, logger)
	if err != nil {
		return nil, err
	}
	articleService := service.NewArticleService(db, logger)
	reportService, err := service.NewReportService(cfg.Reports, db, logger)
	if err != nil {
		return nil, err
	}

	// Create router
	router := gin.New()

	// Create server
	srv := &Server{
		Config:         cfg,
		DB:             db,
		Router:         router,
		Logger:         logger,
		AuthService:    authService,
		ArticleService: articleService,
		ReportService:  reportService,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Request id middleware
	s.Router.Use(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header("X-Request-Id", requestID)
		c.Next()
	})

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Disposition"},
	}))

	// Metrics middleware
	s.Router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// Prometheus scrape endpoint
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.Router.POST("/users/login", s.handleLogin)

	authed := s.Router.Group("/", s.AuthService.Middleware())
	{
		articles := authed.Group("/articles")
		{
			articles.GET("", s.handleListArticles)
			articles.POST("/approve/:articleId", s.handleApproveArticle)
			articles.POST("/user-toggle-is-not-relevant/:articleId", s.handleToggleRelevance)
			articles.GET("/summary-statistics", s.handleSummaryStatistics)
		}

		reports := authed.Group("/reports")
		{
			reports.GET("", s.handleListReports)
			reports.POST("/create", s.handleCreateReport)
			reports.GET("/list", s.handleListReportFiles)
			reports.GET("/download/:reportId", s.handleDownloadReport)
			reports.DELETE("/:reportId", s.handleDeleteReport)
			reports.POST("/update-submitted-to-client-date/:reportId", s.handleMarkSubmitted)
			reports.POST("/toggle-article-rejection/:contractId", s.handleToggleArticleRejection)
			reports.POST("/update-article-report-reference-number/:contractId", s.handleUpdateReferenceNumber)
		}
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Startup tasks: admin accounts and the reports directory
	if err := s.AuthService.BootstrapAdminUsers(ctx, s.Config.Admin); err != nil {
		return fmt.Errorf("failed to bootstrap admin users: %w", err)
	}
	if s.Config.Reports.Dir != "" {
		if err := util.EnsureDir(s.Config.Reports.Dir); err != nil {
			return fmt.Errorf("failed to prepare reports directory: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}

func currentUserID(c *gin.Context) uint {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	return uint(id), true
}
