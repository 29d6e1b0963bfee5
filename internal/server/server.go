package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/procura/internal/auth"
	authdomain "github.com/smallbiznis/procura/internal/auth/domain"
	"github.com/smallbiznis/procura/internal/auth/session"
	"github.com/smallbiznis/procura/internal/config"
	"github.com/smallbiznis/procura/internal/notification"
	"github.com/smallbiznis/procura/internal/observability"
	obsmiddleware "github.com/smallbiznis/procura/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/procura/internal/observability/metrics"
	obstracing "github.com/smallbiznis/procura/internal/observability/tracing"
	"github.com/smallbiznis/procura/internal/organization"
	organizationdomain "github.com/smallbiznis/procura/internal/organization/domain"
	"github.com/smallbiznis/procura/internal/providers/email"
	"github.com/smallbiznis/procura/internal/ratelimit"
	"github.com/smallbiznis/procura/internal/rfq"
	rfqdomain "github.com/smallbiznis/procura/internal/rfq/domain"
	"github.com/smallbiznis/procura/internal/vendors"
	vendordomain "github.com/smallbiznis/procura/internal/vendors/domain"
	"github.com/smallbiznis/procura/internal/vendorportal"
	vendorportaldomain "github.com/smallbiznis/procura/internal/vendorportal/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	organization.Module,
	vendor.Module,
	email.Module,
	notification.Module,
	rfq.Module,
	vendorportal.Module,
	ratelimit.Module,
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

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
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
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	authsvc         authdomain.Service
	sessions        *session.Manager
	genID           *snowflake.Node
	organizationSvc organizationdomain.Service
	vendorSvc       vendordomain.Directory
	rfqSvc          rfqdomain.Service
	portalSvc       vendorportaldomain.Service
	portalLimiter   *ratelimit.PortalLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Authsvc         authdomain.Service
	Sessions        *session.Manager
	GenID           *snowflake.Node
	OrganizationSvc organizationdomain.Service
	VendorSvc       vendordomain.Directory
	RFQSvc          rfqdomain.Service
	PortalSvc       vendorportaldomain.Service
	PortalLimiter   *ratelimit.PortalLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		authsvc:         p.Authsvc,
		sessions:        p.Sessions,
		genID:           p.GenID,
		organizationSvc: p.OrganizationSvc,
		vendorSvc:       p.VendorSvc,
		rfqSvc:          p.RFQSvc,
		portalSvc:       p.PortalSvc,
		portalLimiter:   p.PortalLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerPortalRoutes()

	return svc
}
