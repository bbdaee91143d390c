// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the catalog service.
//
// The auth middleware reads the token from the x-auth-token header (the
// header the legacy frontend sends), validates it through the configured
// auth.Provider and stores the resulting identity in the Gin context for
// downstream handlers.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/auth"
)

// authInfoKey is the context key for storing auth.Info. A typed key
// prevents collisions with other context values.
const authInfoKey = "icebods_auth_info"

// SetAuthInfo stores the authenticated user info in the Gin context.
func SetAuthInfo(c *gin.Context, info *auth.Info) {
	c.Set(authInfoKey, info)
}

// GetAuthInfo retrieves the authenticated user info from the Gin
// context, or nil when the request was not authenticated.
func GetAuthInfo(c *gin.Context) *auth.Info {
	if info, exists := c.Get(authInfoKey); exists {
		if authInfo, ok := info.(*auth.Info); ok {
			return authInfo
		}
	}
	return nil
}

// AuthMiddleware authenticates requests via the x-auth-token header.
// Requests with a missing or invalid token are rejected with 401 before
// reaching the handler.
func AuthMiddleware(provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("x-auth-token")
		info, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access denied: invalid or missing token"})
			return
		}
		SetAuthInfo(c, info)
		c.Next()
	}
}
