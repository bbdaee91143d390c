// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability exposes Prometheus metrics for the catalog
// service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
)

// Metrics holds the service's Prometheus collectors on a private
// registry so tests can create instances without collisions.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	itemWrites      *prometheus.CounterVec
	orderShifts     prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icebods",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "icebods",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		itemWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icebods",
			Name:      "catalog_item_writes_total",
			Help:      "Item mutations by category and operation.",
		}, []string{"category", "operation"}),
		orderShifts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "icebods",
			Name:      "catalog_order_shifts_total",
			Help:      "Bulk order shifts performed by delete compaction and reorders.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.itemWrites,
		m.orderShifts,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latencies. Routes are
// labeled by their registered pattern, not the raw URL, to keep
// cardinality bounded.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveItemWrite counts one item mutation.
func (m *Metrics) ObserveItemWrite(cat datatypes.Category, operation string) {
	m.itemWrites.WithLabelValues(string(cat), operation).Inc()
}

// ObserveOrderShift counts one bulk order shift.
func (m *Metrics) ObserveOrderShift() {
	m.orderShifts.Inc()
}
