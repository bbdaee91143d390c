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

// RegisterUser creates an administrator account. The issued token rides
// in the x-auth-token response header, the way the legacy frontend reads
// it; the body carries the public account fields only.
func RegisterUser(svc *service.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.RegisterUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		user, token, err := svc.Register(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("x-auth-token", token)
		// The identifier keys as "_id"; the frontend reads the Mongo
		// field name.
		c.JSON(http.StatusOK, gin.H{
			"_id":   user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
		})
	}
}
