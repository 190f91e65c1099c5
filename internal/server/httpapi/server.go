// Package httpapi exposes the development backend over HTTP with gin: the
// generic resource routes under /api, customer login, health and metrics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/sellingcar/internal/logging"
	"github.com/dmitrijs2005/sellingcar/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address   string
	records   *services.RecordService
	customers *services.CustomerService
	logger    logging.Logger
	jwtSecret []byte
	registry  *prometheus.Registry
	metrics   *metrics
	engine    *gin.Engine
}

func NewServer(a string, l logging.Logger, rs *services.RecordService, cs *services.CustomerService, secretKey string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		records:   rs,
		customers: cs,
		jwtSecret: []byte(secretKey),
		registry:  prometheus.NewRegistry(),
	}
	s.metrics = newMetrics(s.registry)
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestIDMiddleware(), s.metricsMiddleware(), s.loggingMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.POST("/customers/login", s.login)

	api := r.Group("/api", s.accessTokenMiddleware())
	{
		api.GET("/:resource", s.list)
		api.POST("/:resource", s.create)
		api.PUT("/:resource/:k1", s.update)
		api.PUT("/:resource/:k1/:k2", s.update)
		api.DELETE("/:resource/:k1", s.delete)
		api.DELETE("/:resource/:k1/:k2", s.delete)
	}
	return r
}

// Handler returns the configured router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
