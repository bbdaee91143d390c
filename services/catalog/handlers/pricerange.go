// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/service"
)

// GetPriceRange returns the settings record. First access materializes
// the defaults and answers 201 instead of 200.
func GetPriceRange(svc *service.PriceRanges) gin.HandlerFunc {
	return func(c *gin.Context) {
		pr, created, err := svc.Get(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, pr)
	}
}

// UpdatePriceRange merges the request into the settings record,
// answering 201 when the record had to be created first.
func UpdatePriceRange(svc *service.PriceRanges) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.PriceRangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		pr, created, err := svc.Upsert(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, pr)
	}
}
