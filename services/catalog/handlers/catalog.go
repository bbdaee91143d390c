// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/service"
)

// maxImageBytes caps the info image size at 8 MiB.
const maxImageBytes = 8 << 20

// ListItems returns one page of the category, sorted by order.
func ListItems(svc *service.Catalog, cat datatypes.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q datatypes.ListQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		page, err := svc.List(c.Request.Context(), cat, q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetItem returns one item by id.
func GetItem(svc *service.Catalog, cat datatypes.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.Get(c.Request.Context(), cat, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// CreateItem creates an item from a multipart form (descriptive fields
// plus an optional infoImage file) or a plain JSON body. The legacy API
// answers 200 on creation, not 201, and the frontend checks for it.
func CreateItem(svc *service.Catalog, cat datatypes.Category, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, image, err := parseItemForm(c)
		if err != nil {
			writeError(c, err)
			return
		}
		item, err := svc.Create(c.Request.Context(), cat, req, image)
		if err != nil {
			logger.Warn("item create failed", "category", cat, "error", err)
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// UpdateItem edits an item. Absent fields keep their stored values and
// the order field is never touched.
func UpdateItem(svc *service.Catalog, cat datatypes.Category, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, image, err := parseItemForm(c)
		if err != nil {
			writeError(c, err)
			return
		}
		item, err := svc.Update(c.Request.Context(), cat, c.Param("id"), req, image)
		if err != nil {
			logger.Warn("item update failed", "category", cat, "id", c.Param("id"), "error", err)
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DeleteItem removes an item and compacts the category's order values.
func DeleteItem(svc *service.Catalog, cat datatypes.Category, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.Get(c.Request.Context(), cat, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if err := svc.Delete(c.Request.Context(), cat, c.Param("id")); err != nil {
			logger.Warn("item delete failed", "category", cat, "id", c.Param("id"), "error", err)
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// ReorderItems moves one item to a new position. The legacy frontend
// expects the literal body "Success" on completion.
func ReorderItems(svc *service.Catalog, cat datatypes.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ReorderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := svc.ReorderItem(c.Request.Context(), cat, &req); err != nil {
			writeError(c, err)
			return
		}
		c.String(http.StatusOK, "Success")
	}
}

// parseItemForm decodes a create/edit request. Multipart forms carry
// the buy links as JSON-encoded field values and the image as the
// infoImage file part; a JSON body carries everything except the image.
func parseItemForm(c *gin.Context) (*datatypes.ItemRequest, *service.ImageUpload, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req datatypes.ItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, datatypes.NewValidationError("invalid request body")
		}
		return &req, nil, nil
	}

	req := &datatypes.ItemRequest{
		Name:         c.PostForm("name"),
		Overview:     c.PostForm("overview"),
		Review:       c.PostForm("review"),
		Pros:         c.PostForm("pros"),
		Cons:         c.PostForm("cons"),
		PromoInfo:    c.PostForm("promoInfo"),
		DeliveryTime: c.PostForm("deliveryTime"),
		Dimensions:   c.PostForm("dimensions"),
		Terms:        c.PostForm("terms"),
	}

	for field, dst := range map[string]**datatypes.BuyLinkInput{
		"buyLink1": &req.BuyLink1,
		"buyLink2": &req.BuyLink2,
	} {
		raw := c.PostForm(field)
		if raw == "" {
			continue
		}
		var link datatypes.BuyLinkInput
		if err := json.Unmarshal([]byte(raw), &link); err != nil {
			return nil, nil, datatypes.NewValidationError("field %q is not valid JSON", field)
		}
		*dst = &link
	}

	if raw := c.PostForm("rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, nil, datatypes.NewValidationError("field %q must be a number", "rating")
		}
		req.Rating = &v
	}
	if raw := c.PostForm("enabled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, nil, datatypes.NewValidationError("field %q must be a boolean", "enabled")
		}
		req.Enabled = &v
	}
	if raw := c.PostForm("order"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, datatypes.NewValidationError("field %q must be an integer", "order")
		}
		req.Order = v
	}

	image, err := readImage(c)
	if err != nil {
		return nil, nil, err
	}
	return req, image, nil
}

// readImage extracts the optional infoImage file part. Any other file
// field is rejected rather than silently dropped.
func readImage(c *gin.Context) (*service.ImageUpload, error) {
	if form, err := c.MultipartForm(); err == nil {
		for field := range form.File {
			if field != "infoImage" {
				return nil, datatypes.NewValidationError("unexpected file field %q", field)
			}
		}
	}
	header, err := c.FormFile("infoImage")
	if err != nil {
		// Absent file part is fine; the image is optional.
		return nil, nil
	}
	if header.Size > maxImageBytes {
		return nil, datatypes.NewValidationError("image exceeds the %d byte limit", maxImageBytes)
	}
	file, err := header.Open()
	if err != nil {
		return nil, datatypes.NewValidationError("could not read uploaded image")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, datatypes.NewValidationError("could not read uploaded image")
	}
	if len(data) > maxImageBytes {
		return nil, datatypes.NewValidationError("image exceeds the %d byte limit", maxImageBytes)
	}
	return &service.ImageUpload{
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
