// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
)

const userCollection = "users"

// UserStore persists administrator accounts. Email lookups back the
// duplicate-registration check; uniqueness is enforced at the service
// level rather than by a database index, matching the legacy behavior.
type UserStore interface {
	// FindByEmail returns the user or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*datatypes.User, error)

	// InsertUser stores a new account.
	InsertUser(ctx context.Context, user *datatypes.User) (*datatypes.User, error)
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*datatypes.User, error) {
	var user datatypes.User
	err := s.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("find user", err)
	}
	return &user, nil
}

func (s *MongoStore) InsertUser(ctx context.Context, user *datatypes.User) (*datatypes.User, error) {
	res, err := s.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, wrapErr("insert user", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return user, nil
}

var _ UserStore = (*MongoStore)(nil)

// MemoryUserStore is an in-memory UserStore for tests.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*datatypes.User
}

// NewMemoryUserStore creates an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*datatypes.User)}
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*datatypes.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryUserStore) InsertUser(ctx context.Context, user *datatypes.User) (*datatypes.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	s.users[user.Email] = &copied
	return user, nil
}

var _ UserStore = (*MemoryUserStore)(nil)
