package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/quickpost/utils"
)

// StatsSource reports aggregate counts and store health.
type StatsSource interface {
	Counts(ctx context.Context) (users, posts int64, err error)
	Ping(ctx context.Context) error
}

// StatsController provides liveness, readiness and aggregate counts.
type StatsController struct {
	store StatsSource
	cache utils.Cache
	log   *zap.Logger
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(store StatsSource, cache utils.Cache, log *zap.Logger) *StatsController {
	return &StatsController{store: store, cache: cache, log: log}
}

// Health answers as long as the process serves requests.
func (s *StatsController) Health(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"status": "ok"})
}

// Ready checks the store and, when it is remote, the cache. A cache outage
// degrades the service without making it unready.
func (s *StatsController) Ready(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := s.store.Ping(c); err != nil {
		s.log.Warn("readiness: store unreachable", zap.Error(err))
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "store unavailable")
		return
	}
	cacheStatus := "ok"
	if p, ok := s.cache.(utils.Pinger); ok {
		if err := p.Ping(c); err != nil {
			s.log.Warn("readiness: cache unreachable", zap.Error(err))
			cacheStatus = "degraded"
		}
	}
	utils.Success(ctx, gin.H{"store": "ok", "cache": cacheStatus})
}

// GetStats returns aggregate counts.
func (s *StatsController) GetStats(ctx *gin.Context) {
	users, posts, err := s.store.Counts(ctx.Request.Context())
	if err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, gin.H{
		"user_count": users,
		"post_count": posts,
	})
}
