// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the Gin handlers for the catalog API.
// Handlers are closure factories over their service dependencies; all
// business decisions live in the service layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/auth"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/sequencer"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/service"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/store"
)

// writeError maps service errors onto HTTP responses. This is the only
// place status codes are decided, so every handler fails the same way:
//
//	validation / out-of-range order / duplicate email -> 400
//	invalid token                                     -> 401
//	unknown item                                      -> 404
//	blob upload failure                               -> 500
//	store unreachable                                 -> 503
func writeError(c *gin.Context, err error) {
	var attErr *service.AttachmentError
	switch {
	case datatypes.IsValidationError(err),
		errors.Is(err, sequencer.ErrOrderOutOfRange),
		errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &attErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "attachment upload failed"})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
