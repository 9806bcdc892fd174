package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cppla/quickpost/config"
	"github.com/cppla/quickpost/controllers"
	"github.com/cppla/quickpost/middleware"
	"github.com/cppla/quickpost/services"
	"github.com/cppla/quickpost/utils"
)

// Deps are the long-lived handles the router wires into controllers.
type Deps struct {
	Config config.AppConfig
	Log    *zap.Logger
	Auth   *services.AuthService
	Posts  *services.PostService
	Stats  controllers.StatsSource
	Cache  utils.Cache
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())

	// Access log goes to its own rolling file; fall back to the app logger.
	gl := d.Log
	if cfg.GinPath != "" {
		if fl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err == nil {
			gl = fl
		} else {
			d.Log.Warn("gin access log disabled", zap.String("path", cfg.GinPath), zap.Error(err))
		}
	}
	r.Use(ginzap.GinzapWithConfig(gl, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health"},
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("request_id", middleware.RequestIDFrom(c))}
		},
	}))
	r.Use(ginzap.RecoveryWithZap(gl, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.TokenHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		// Credentials cannot be combined with a wildcard origin.
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.BodyLimit(middleware.DefaultMaxBodyBytes))

	authController := controllers.NewAuthController(d.Auth, d.Log)
	postController := controllers.NewPostController(d.Posts, d.Log)
	statsController := controllers.NewStatsController(d.Stats, d.Cache, d.Log)
	authRequired := middleware.AuthRequired(d.Auth)

	r.GET("/health", statsController.Health)
	r.GET("/ready", statsController.Ready)

	// Original flat routes, kept for existing clients.
	r.POST("/signup", authController.Signup)
	r.POST("/login", authController.Login)
	r.POST("/addpost", authRequired, postController.AddPost)
	r.GET("/getposts", authRequired, postController.ListPosts)
	r.DELETE("/deletepost/:post_id", authRequired, postController.DeletePost)

	api := r.Group("/api/v1")
	api.GET("/stats", statsController.GetStats)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", authRequired, authController.Me)

	postsGroup := api.Group("/posts")
	postsGroup.Use(authRequired)
	postsGroup.GET("", postController.ListPosts)
	postsGroup.POST("", postController.AddPost)
	postsGroup.GET("/:id", postController.GetPost)
	postsGroup.PUT("/:id", postController.UpdatePost)
	postsGroup.DELETE("/:id", postController.DeletePost)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
