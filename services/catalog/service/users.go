// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/auth"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/store"
)

// ErrDuplicateEmail is returned when registering an email that already
// has an account.
var ErrDuplicateEmail = errors.New("user already registered")

// Users handles administrator registration.
type Users struct {
	store  store.UserStore
	issuer auth.Issuer
	logger *logging.Logger
}

// NewUsers wires a Users service.
func NewUsers(st store.UserStore, issuer auth.Issuer, logger *logging.Logger) *Users {
	return &Users{store: st, issuer: issuer, logger: logger}
}

// Register creates an account and returns it with a freshly issued auth
// token. The duplicate check is a read-then-write without a unique
// index; two concurrent registrations of the same email can both land,
// matching the legacy deployment.
func (u *Users) Register(ctx context.Context, req *datatypes.RegisterUserRequest) (*datatypes.User, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	_, err := u.store.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, "", ErrDuplicateEmail
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		return nil, "", err
	}

	user, err := u.store.InsertUser(ctx, &datatypes.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := u.issuer.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}

	u.logger.Info("user registered", "id", user.ID.Hex())
	return user, token, nil
}
