package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LJTian/NewsBrief/internal/logger"
	"github.com/LJTian/NewsBrief/internal/storage"
)

// DefaultLimit 与首页展示的最新条数一致
const DefaultLimit = 6

// Reader 是归档的只读视图
type Reader interface {
	Latest(ctx context.Context, limit int) ([]storage.Article, error)
	Count(ctx context.Context) (int64, error)
}

type Server struct {
	store Reader
	log   *zap.Logger
}

func NewServer(store Reader, log *zap.Logger) *Server {
	return &Server{store: store, log: logger.OrNop(log)}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/news", s.listNews)
		v1.GET("/stats", s.stats)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listNews limit=0 返回全部归档
func (s *Server) listNews(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 0 {
		limit = DefaultLimit
	}
	if limit > storage.RetentionCeiling*2 {
		limit = storage.RetentionCeiling * 2
	}

	items, err := s.store.Latest(c.Request.Context(), limit)
	if err != nil {
		s.internalError(c, "list news", err)
		return
	}
	if items == nil {
		items = []storage.Article{}
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}

func (s *Server) stats(c *gin.Context) {
	n, err := s.store.Count(c.Request.Context())
	if err != nil {
		s.internalError(c, "count news", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    gin.H{"news_count": n},
	})
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.log.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}

// RequestLogger 用 zap 替换 gin 默认的访问日志
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
