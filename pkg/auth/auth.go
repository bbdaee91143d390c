// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package auth defines the token validation collaborator used by the
// HTTP layer and the JWT implementation used in production.
//
// Admin endpoints (create/update/delete/reorder, price-range upsert) carry
// a token in the x-auth-token header. The middleware hands that token to a
// Provider; handlers never see raw tokens.
//
// Two implementations ship with the service:
//
//   - JWTProvider: HS256 tokens signed with the deployment key, issued at
//     user registration.
//   - NopProvider: accepts everything, for tests and local development.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned when token validation fails.
// Implementations wrap it so callers can test with errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// Info contains identity information returned after successful validation.
type Info struct {
	// UserID is the unique identifier of the authenticated user.
	UserID string
}

// Provider validates authentication tokens and returns user identity.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Validate checks the token and returns the caller's identity.
	// Returns ErrUnauthorized (possibly wrapped) for invalid tokens.
	Validate(ctx context.Context, token string) (*Info, error)
}

// Issuer mints tokens for newly registered users. JWTProvider implements
// both Provider and Issuer; tests may stub them independently.
type Issuer interface {
	Issue(userID string) (string, error)
}

// JWTProvider validates and issues HS256-signed JWTs carrying the user id
// in the "id" claim, matching the tokens the legacy deployment issued.
type JWTProvider struct {
	key []byte
}

// NewJWTProvider creates a provider from the deployment signing key.
func NewJWTProvider(key string) (*JWTProvider, error) {
	if key == "" {
		return nil, errors.New("jwt signing key must not be empty")
	}
	return &JWTProvider{key: []byte(key)}, nil
}

// Issue signs a token for the given user id.
func (p *JWTProvider) Issue(userID string) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies the token signature.
func (p *JWTProvider) Validate(ctx context.Context, token string) (*Info, error) {
	if token == "" {
		return nil, fmt.Errorf("missing token: %w", ErrUnauthorized)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type: %w", ErrUnauthorized)
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("token has no user id: %w", ErrUnauthorized)
	}

	return &Info{UserID: id}, nil
}

// NopProvider authorizes every request as a fixed local user.
type NopProvider struct{}

// Validate always succeeds.
func (NopProvider) Validate(ctx context.Context, token string) (*Info, error) {
	return &Info{UserID: "local-user"}, nil
}

// Issue returns the user id itself as the token.
func (NopProvider) Issue(userID string) (string, error) {
	return userID, nil
}
