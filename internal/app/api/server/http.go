package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ronsystem/fcpdigital-backend/docs"
	"github.com/ronsystem/fcpdigital-backend/internal/app/api/handlers"
	mw "github.com/ronsystem/fcpdigital-backend/internal/app/api/middleware"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/auditlog"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/calls"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/clients"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/leads"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/provisioning"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/usage"
	cfgpkg "github.com/ronsystem/fcpdigital-backend/pkg/config"
	metrics "github.com/ronsystem/fcpdigital-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	bridge *provisioning.Bridge,
	ledger *provisioning.Ledger,
	clientSvc *clients.Service,
	callSvc *calls.Service,
	usageSvc *usage.Service,
	leadSvc *leads.Service,
	audit *auditlog.Service,
) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Inbound webhooks. The Stripe handler verifies the raw signed body, so
	// nothing that touches the body goes on these groups.
	webhooks := r.Group("/api/webhooks")
	webhooks.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterStripeWebhookRoutes(webhooks, bridge, log)

	callWebhooks := r.Group("/api/calls")
	callWebhooks.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterCallWebhookRoutes(callWebhooks, callSvc, log)

	// Dashboard APIs
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterClientRoutes(apiV1, clientSvc, callSvc, usageSvc, log)

	// Admin APIs
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), clientSvc, leadSvc, audit, ledger, bridge, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
