// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store defines the item persistence contract and its MongoDB
// and in-memory implementations.
//
// The contract deliberately includes a bulk conditional increment of the
// order field (IncrementOrderWhere). The sequencer depends on that being
// a single store-level request, not a client-side loop: the atomicity of
// the bulk update is what bounds the inconsistency window during
// compaction and range shifts. A store that cannot provide it would need
// a per-category exclusive section around those sequences instead.
package store

import (
	"context"
	"errors"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
)

// ErrNotFound indicates the requested item does not exist.
var ErrNotFound = errors.New("item not found")

// ErrUnavailable indicates the store could not be reached. The HTTP layer
// maps it to 503 so driver errors never leak to clients.
var ErrUnavailable = errors.New("store unavailable")

// Filter selects items within one category.
type Filter struct {
	// EnabledOnly restricts results to items with enabled=true.
	EnabledOnly bool
}

// ListOptions controls ordering and pagination of FindByFilter.
type ListOptions struct {
	// SortByOrder sorts ascending by the order field.
	SortByOrder bool
	// Limit caps the result size; zero means no limit.
	Limit int64
	// Offset skips the first N matches.
	Offset int64
}

// OrderRange selects items by their order value. Zero fields are unset;
// order values are always >= 1 so zero is a safe sentinel.
type OrderRange struct {
	GT  int
	GTE int
	LT  int
	LTE int
}

// Contains reports whether the given order value matches the range.
func (r OrderRange) Contains(order int) bool {
	if r.GT != 0 && !(order > r.GT) {
		return false
	}
	if r.GTE != 0 && !(order >= r.GTE) {
		return false
	}
	if r.LT != 0 && !(order < r.LT) {
		return false
	}
	if r.LTE != 0 && !(order <= r.LTE) {
		return false
	}
	return true
}

// ItemStore is the persistence contract for catalog items. All methods
// are scoped to one category; categories never share an ordering
// namespace. Implementations must be safe for concurrent use.
type ItemStore interface {
	// FindByFilter returns matching items according to opts.
	FindByFilter(ctx context.Context, cat datatypes.Category, filter Filter, opts ListOptions) ([]datatypes.Item, error)

	// CountByFilter counts matching items.
	CountByFilter(ctx context.Context, cat datatypes.Category, filter Filter) (int64, error)

	// FindByID returns the item or ErrNotFound.
	FindByID(ctx context.Context, cat datatypes.Category, id string) (*datatypes.Item, error)

	// Insert stores a new item and returns it with the store-assigned id.
	Insert(ctx context.Context, cat datatypes.Category, item *datatypes.Item) (*datatypes.Item, error)

	// UpdateByID replaces the item's fields and returns the updated
	// record, or ErrNotFound.
	UpdateByID(ctx context.Context, cat datatypes.Category, id string, item *datatypes.Item) (*datatypes.Item, error)

	// SetOrder updates only the order field of one item.
	SetOrder(ctx context.Context, cat datatypes.Category, id string, order int) error

	// DeleteByID removes the item or returns ErrNotFound.
	DeleteByID(ctx context.Context, cat datatypes.Category, id string) error

	// IncrementOrderWhere adds delta to the order of every item whose
	// order matches rng, excluding excludeID when non-empty. The update
	// must be applied as a single store-level bulk request. Returns the
	// number of items affected.
	IncrementOrderWhere(ctx context.Context, cat datatypes.Category, rng OrderRange, excludeID string, delta int) (int64, error)
}
