package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cppla/quickpost/config"
	"github.com/cppla/quickpost/routes"
	"github.com/cppla/quickpost/services"
	"github.com/cppla/quickpost/store"
	"github.com/cppla/quickpost/utils"
)

func main() {
	var (
		configPath string
		port       string
	)
	pflag.StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the JSON config file")
	pflag.StringVarP(&port, "port", "p", "", "listen port (overrides APP_PORT)")
	pflag.Parse()

	if err := run(configPath, port); err != nil {
		fmt.Fprintln(os.Stderr, "quickpost:", err)
		os.Exit(1)
	}
}

func run(configPath, port string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.AppPort = port
	}

	log, err := utils.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.UsesDefaultSecret() && strings.EqualFold(cfg.GinMode, "release") {
		log.Warn("JWT_SECRET is not set; tokens are signed with the development default")
	}

	db, err := config.InitDatabase(cfg, store.Models()...)
	if err != nil {
		return err
	}
	st := store.New(db)
	defer func() { _ = st.Close() }()

	cache, err := utils.NewCache(cfg, log)
	if err != nil {
		return err
	}
	if rc, ok := cache.(*utils.RedisCache); ok {
		defer func() { _ = rc.Client().Close() }()
	}

	tokens := utils.NewTokenService(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	r := routes.SetupRouter(routes.Deps{
		Config: cfg,
		Log:    log,
		Auth:   services.NewAuthService(st, tokens, log),
		Posts:  services.NewPostService(st, cache, cacheTTL, utils.NewPostSanitizer(cfg.SanitizePosts), log),
		Stats:  st,
		Cache:  cache,
	})

	log.Info("starting server (graceful)",
		zap.String("port", cfg.AppPort),
		zap.String("cache", cfg.CacheDriver),
	)
	if err := utils.GraceServer(":"+cfg.AppPort, r, log); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
