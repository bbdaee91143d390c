// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTProvider_RoundTrip(t *testing.T) {
	provider, err := NewJWTProvider("test-signing-key")
	require.NoError(t, err)

	token, err := provider.Issue("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	info, err := provider.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", info.UserID)
}

func TestJWTProvider_RejectsInvalidTokens(t *testing.T) {
	provider, err := NewJWTProvider("test-signing-key")
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		_, err := provider.Validate(context.Background(), "")
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := provider.Validate(context.Background(), "not-a-jwt")
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		other, err := NewJWTProvider("other-key")
		require.NoError(t, err)
		token, err := other.Issue("user-42")
		require.NoError(t, err)

		_, err = provider.Validate(context.Background(), token)
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})
}

func TestNewJWTProvider_EmptyKey(t *testing.T) {
	_, err := NewJWTProvider("")
	require.Error(t, err)
}

func TestNopProvider(t *testing.T) {
	info, err := NopProvider{}.Validate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "local-user", info.UserID)
}
