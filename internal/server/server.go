package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
)

// Server serves the shipping tax HTTP API.
type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	handlers   *handlers.Handlers
	gatherer   prometheus.Gatherer
	logger     *logging.LoggerV2
}

// New builds the router. gatherer backs /metrics; nil selects the default
// Prometheus registry.
func New(h *handlers.Handlers, cfg *config.Config, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		gatherer: gatherer,
		logger:   logging.NewLoggerV2("server"),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/shipping-tax/calculate", s.handlers.CalculateShippingTax)
		v1.GET("/shipping-tax/rates", s.handlers.ListShippingTaxRates)
		v1.DELETE("/shipping-tax/rates/cache", s.handlers.InvalidateRateCache)
		v1.GET("/tax-classes/:class/percentage", s.handlers.GetTaxPercentage)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting server", logging.Fields{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
