// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog assembles the HTTP server from the service, store and
// observability layers.
package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/routes"
)

const serviceName = "icebods-catalog"

// Server is the assembled HTTP server.
type Server struct {
	engine *gin.Engine
	logger *logging.Logger
	http   *http.Server
}

// NewServer builds the Gin engine with recovery, tracing and metrics
// middleware and mounts the API routes.
func NewServer(deps routes.Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(serviceName))
	if deps.Metrics != nil {
		engine.Use(deps.Metrics.GinMiddleware())
	}

	routes.SetupRoutes(engine, deps)
	return &Server{engine: engine, logger: deps.Logger}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info("shutting down http server")
	return s.http.Shutdown(shutdownCtx)
}
