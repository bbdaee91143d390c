// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/auth"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/handlers"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/middleware"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/observability"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/service"
)

// Deps carries everything route setup needs.
type Deps struct {
	Catalog     *service.Catalog
	PriceRanges *service.PriceRanges
	Users       *service.Users
	Auth        auth.Provider
	Logger      *logging.Logger
	Metrics     *observability.Metrics
}

// SetupRoutes mounts the API. Reads are public; every mutation sits
// behind the x-auth-token middleware. Each category gets the same CRUD
// surface under /api/<category>, with reordering as a POST on the
// /reorder subpath, matching the legacy API.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/users", handlers.RegisterUser(deps.Users))

		api.GET("/price-range", handlers.GetPriceRange(deps.PriceRanges))
		api.PUT("/price-range", middleware.AuthMiddleware(deps.Auth), handlers.UpdatePriceRange(deps.PriceRanges))

		for _, cat := range datatypes.Categories() {
			g := api.Group("/" + string(cat))
			{
				g.GET("", handlers.ListItems(deps.Catalog, cat))
				g.GET("/:id", handlers.GetItem(deps.Catalog, cat))

				admin := g.Group("", middleware.AuthMiddleware(deps.Auth))
				{
					admin.POST("", handlers.CreateItem(deps.Catalog, cat, deps.Logger))
					admin.POST("/reorder", handlers.ReorderItems(deps.Catalog, cat))
					admin.PUT("/:id", handlers.UpdateItem(deps.Catalog, cat, deps.Logger))
					admin.DELETE("/:id", handlers.DeleteItem(deps.Catalog, cat, deps.Logger))
				}
			}
		}
	}
}
