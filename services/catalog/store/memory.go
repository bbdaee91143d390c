// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
)

// MemoryStore is an in-memory ItemStore for tests. A single mutex covers
// every operation, so the bulk increment is atomic with respect to
// readers, matching the Mongo UpdateMany semantics the sequencer needs.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[datatypes.Category]map[string]*datatypes.Item
}

// NewMemoryStore creates an empty store covering all categories.
func NewMemoryStore() *MemoryStore {
	items := make(map[datatypes.Category]map[string]*datatypes.Item)
	for _, cat := range datatypes.Categories() {
		items[cat] = make(map[string]*datatypes.Item)
	}
	return &MemoryStore{items: items}
}

func (f Filter) matches(item *datatypes.Item) bool {
	if f.EnabledOnly && !item.Enabled {
		return false
	}
	return true
}

func (s *MemoryStore) FindByFilter(ctx context.Context, cat datatypes.Category, filter Filter, opts ListOptions) ([]datatypes.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []datatypes.Item
	for _, item := range s.items[cat] {
		if filter.matches(item) {
			out = append(out, *item)
		}
	}
	if opts.SortByOrder {
		sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	}
	if opts.Offset > 0 {
		if opts.Offset >= int64(len(out)) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && int64(len(out)) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemoryStore) CountByFilter(ctx context.Context, cat datatypes.Category, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, item := range s.items[cat] {
		if filter.matches(item) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, cat datatypes.Category, id string) (*datatypes.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[cat][id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *MemoryStore) Insert(ctx context.Context, cat datatypes.Category, item *datatypes.Item) (*datatypes.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	copied := *item
	s.items[cat][item.ID.Hex()] = &copied
	return item, nil
}

func (s *MemoryStore) UpdateByID(ctx context.Context, cat datatypes.Category, id string, item *datatypes.Item) (*datatypes.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[cat][id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *item
	copied.ID = existing.ID
	s.items[cat][id] = &copied
	result := copied
	return &result, nil
}

func (s *MemoryStore) SetOrder(ctx context.Context, cat datatypes.Category, id string, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[cat][id]
	if !ok {
		return ErrNotFound
	}
	item.Order = order
	return nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, cat datatypes.Category, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[cat][id]; !ok {
		return ErrNotFound
	}
	delete(s.items[cat], id)
	return nil
}

func (s *MemoryStore) IncrementOrderWhere(ctx context.Context, cat datatypes.Category, rng OrderRange, excludeID string, delta int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, item := range s.items[cat] {
		if id == excludeID {
			continue
		}
		if rng.Contains(item.Order) {
			item.Order += delta
			n++
		}
	}
	return n, nil
}

var _ ItemStore = (*MemoryStore)(nil)
