// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// icebodsd is the catalog backend daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/cmd/icebodsd/config"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/auth"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/tracing"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/blob"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/cleanup"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/observability"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/routes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/sequencer"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/service"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/storage/gcs"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/store"
)

// version is injected at build time via -ldflags.
var version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "icebodsd",
		Short: "Icebods catalog backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(version)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe() error {
	if err := config.Load(configPath); err != nil {
		return err
	}
	cfg := config.Global

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "icebodsd",
		JSON:    cfg.Logging.JSON,
	})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: "icebodsd",
		Endpoint:    cfg.Tracing.OTLPEndpoint,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	client, itemStore, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	var blobs blob.Store
	if cfg.GCS.Bucket != "" {
		gcsClient, err := gcs.NewClient(ctx, cfg.GCS.Bucket, cfg.GCS.CredentialsFile)
		if err != nil {
			return err
		}
		defer gcsClient.Close()
		blobs = gcsClient
	} else {
		logger.Warn("no GCS bucket configured, images are held in memory")
		blobs = blob.NewMemoryStore()
	}

	var journal *cleanup.Journal
	if cfg.Cleanup.JournalPath != "" {
		journal, err = cleanup.Open(expandPath(cfg.Cleanup.JournalPath), logger)
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	var provider auth.Provider = auth.NopProvider{}
	var issuer auth.Issuer = auth.NopProvider{}
	if cfg.Auth.JWTKey != "" {
		jwtProvider, err := auth.NewJWTProvider(cfg.Auth.JWTKey)
		if err != nil {
			return err
		}
		provider, issuer = jwtProvider, jwtProvider
	} else {
		logger.Warn("no JWT key configured, admin endpoints are unauthenticated")
	}

	metrics := observability.New()
	seq := sequencer.New(itemStore, logger)
	catalogSvc := service.NewCatalog(itemStore, blobs, seq, journal, logger).WithMetrics(metrics)

	server := catalog.NewServer(routes.Deps{
		Catalog:     catalogSvc,
		PriceRanges: service.NewPriceRanges(itemStore, logger),
		Users:       service.NewUsers(itemStore, issuer, logger),
		Auth:        provider,
		Logger:      logger,
		Metrics:     metrics,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, cfg.Server.Addr)
	})
	if journal != nil {
		interval := time.Duration(cfg.Cleanup.SweepIntervalSeconds) * time.Second
		if interval <= 0 {
			interval = time.Minute
		}
		worker := cleanup.NewWorker(journal, blobs, interval, logger)
		g.Go(func() error {
			err := worker.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("icebodsd stopped")
	return nil
}

// expandPath resolves a leading ~ against the home directory.
func expandPath(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
