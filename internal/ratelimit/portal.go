package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/procura/internal/config"
	"go.uber.org/zap"
)

// Portal endpoints are unauthenticated, so they are throttled per client
// address to blunt token guessing.
const (
	portalRate  = 5.0
	portalBurst = 20
)

type PortalLimiter struct {
	log    *zap.Logger
	bucket *TokenBucket
}

func NewPortalLimiter(log *zap.Logger, cfg config.Config) *PortalLimiter {
	var bucket *TokenBucket
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     strings.TrimSpace(cfg.RedisAddr),
			Password: strings.TrimSpace(cfg.RedisPassword),
		})
		bucket = NewTokenBucket(client)
	}
	return &PortalLimiter{
		log:    log.Named("ratelimit.portal"),
		bucket: bucket,
	}
}

// Middleware throttles by client IP. Limiter backend failures fail open:
// losing redis must not take the portal down with it.
func (l *PortalLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:portal:%s", c.ClientIP())
		res, err := l.bucket.Allow(c.Request.Context(), key, portalRate, portalBurst)
		if err != nil {
			l.log.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			retry := int(res.RetryAfter / time.Second)
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}
