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

const priceRangeCollection = "priceranges"

// PriceRangeStore persists the singleton price-range settings record.
type PriceRangeStore interface {
	// Get returns the record or ErrNotFound when none exists yet.
	Get(ctx context.Context) (*datatypes.PriceRange, error)

	// InsertPriceRange stores the first record. The name carries the
	// record type because MongoStore also implements ItemStore, whose
	// Insert takes a category.
	InsertPriceRange(ctx context.Context, pr *datatypes.PriceRange) (*datatypes.PriceRange, error)

	// Update replaces the stored record's fields.
	Update(ctx context.Context, pr *datatypes.PriceRange) (*datatypes.PriceRange, error)
}

func (s *MongoStore) Get(ctx context.Context) (*datatypes.PriceRange, error) {
	var pr datatypes.PriceRange
	err := s.db.Collection(priceRangeCollection).FindOne(ctx, bson.M{}).Decode(&pr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("find price range", err)
	}
	return &pr, nil
}

func (s *MongoStore) InsertPriceRange(ctx context.Context, pr *datatypes.PriceRange) (*datatypes.PriceRange, error) {
	res, err := s.db.Collection(priceRangeCollection).InsertOne(ctx, pr)
	if err != nil {
		return nil, wrapErr("insert price range", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		pr.ID = oid
	}
	return pr, nil
}

func (s *MongoStore) Update(ctx context.Context, pr *datatypes.PriceRange) (*datatypes.PriceRange, error) {
	res, err := s.db.Collection(priceRangeCollection).ReplaceOne(ctx, bson.M{"_id": pr.ID}, pr)
	if err != nil {
		return nil, wrapErr("update price range", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return pr, nil
}

var _ PriceRangeStore = (*MongoStore)(nil)

// MemoryPriceRangeStore is an in-memory PriceRangeStore for tests.
type MemoryPriceRangeStore struct {
	mu sync.Mutex
	pr *datatypes.PriceRange
}

// NewMemoryPriceRangeStore creates an empty store.
func NewMemoryPriceRangeStore() *MemoryPriceRangeStore {
	return &MemoryPriceRangeStore{}
}

func (s *MemoryPriceRangeStore) Get(ctx context.Context) (*datatypes.PriceRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pr == nil {
		return nil, ErrNotFound
	}
	copied := *s.pr
	return &copied, nil
}

func (s *MemoryPriceRangeStore) InsertPriceRange(ctx context.Context, pr *datatypes.PriceRange) (*datatypes.PriceRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pr.ID.IsZero() {
		pr.ID = primitive.NewObjectID()
	}
	copied := *pr
	s.pr = &copied
	return pr, nil
}

func (s *MemoryPriceRangeStore) Update(ctx context.Context, pr *datatypes.PriceRange) (*datatypes.PriceRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pr == nil {
		return nil, ErrNotFound
	}
	copied := *pr
	s.pr = &copied
	return pr, nil
}

var _ PriceRangeStore = (*MemoryPriceRangeStore)(nil)
