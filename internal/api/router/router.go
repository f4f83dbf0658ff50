package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tudva/backend/config"
	"tudva/backend/internal/api/handler"
	"tudva/backend/internal/api/middleware"
	"tudva/backend/internal/model"
	"tudva/backend/pkg/jwt"
)

// Deps 路由依赖的外部组件；Redis 不可用时 Checker/Limiter 为 nil
type Deps struct {
	JWT     *jwt.Manager
	Checker middleware.TokenChecker
	Limiter middleware.RateLimiter
	DB      *gorm.DB
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			sqlDB, err := deps.DB.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	writeLimit := middleware.RateLimit(deps.Limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", writeLimit, h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Checker))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 时段目录
			authorized.GET("/time-slots", h.TimeSlot.ListTimeSlots)

			// 学生课表
			scheduler := authorized.Group("/scheduler")
			scheduler.Use(middleware.RoleAuth(model.RoleStudent, model.RoleAdmin))
			{
				scheduler.GET("/items", h.Scheduler.GetSchedule)
				scheduler.GET("/available-courses", h.Scheduler.ListAvailableCourses)
				scheduler.POST("/items", writeLimit, h.Scheduler.AddCourseItem)
				scheduler.POST("/live-courses", writeLimit, h.Scheduler.AddLiveCourse)
				scheduler.PUT("/items/:id", writeLimit, h.Scheduler.UpdateScheduledItem)
				scheduler.POST("/order", writeLimit, h.Scheduler.UpdateItemsOrder)
				scheduler.GET("/export", h.Export.ExportSchedule)
			}
		}
	}

	return r
}
