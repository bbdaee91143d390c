// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sequencer maintains the dense ordinal position of catalog
// items.
//
// Invariant: for a category holding N items, the multiset of order
// values is exactly {1..N} after every successful create, delete and
// reorder. The three operations below re-establish it:
//
//   - AssignOnCreate gives a new item order count+1 when none was
//     requested.
//   - CompactOnDelete closes the gap left at position k by decrementing
//     every order > k in one bulk update.
//   - Reorder moves one item and shifts the intervening range by one
//     slot.
//
// The sequencer holds no locks. Correctness under concurrency rests on
// the store's atomic single-document and bulk filter-update semantics.
// Two windows remain open and are accepted rather than hidden:
//
//   - Two concurrent creates can both read the same count and produce a
//     duplicate order until a later delete or reorder restores density.
//   - A reorder's range shift and the moved item's own write are two
//     separate operations; a reader between them sees the moved item
//     still at its old order next to a shifted neighbor, so a duplicate
//     at the old position and a gap at the new one.
//
// One sequencer instance serves all three categories; every method takes
// the category explicitly.
package sequencer

import (
	"context"
	"errors"
	"fmt"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/store"
)

// ErrOrderOutOfRange reports a requested position outside [1, N]. It is
// a validation failure: the request is rejected and nothing is mutated,
// never silently clamped.
var ErrOrderOutOfRange = errors.New("order out of range")

// Sequencer implements the ordering operations against an ItemStore.
type Sequencer struct {
	store  store.ItemStore
	logger *logging.Logger
}

// New creates a Sequencer.
func New(st store.ItemStore, logger *logging.Logger) *Sequencer {
	return &Sequencer{store: st, logger: logger}
}

// AssignOnCreate returns the order for a new item. A positive requested
// value is passed through untouched; zero means auto-assign count+1.
//
// The count is read once at creation time and not revalidated, so two
// concurrent auto-assigning creates can collide on the same order. The
// legacy deployment accepts this, and a lock here would not survive a
// multi-process deployment anyway.
func (s *Sequencer) AssignOnCreate(ctx context.Context, cat datatypes.Category, requested int) (int, error) {
	if requested > 0 {
		return requested, nil
	}
	n, err := s.store.CountByFilter(ctx, cat, store.Filter{})
	if err != nil {
		return 0, fmt.Errorf("count items for order assignment: %w", err)
	}
	return int(n) + 1, nil
}

// CompactOnDelete restores density after the item at deletedOrder was
// removed: every surviving order > deletedOrder drops by one in a single
// bulk update. Deleting the last-ordered item matches nothing, which is
// fine; the update still runs so there is no special case.
//
// Must be called only after the delete succeeded. If the bulk update
// fails the category keeps a gap at deletedOrder until a later write
// happens to repair it; the caller logs and moves on.
func (s *Sequencer) CompactOnDelete(ctx context.Context, cat datatypes.Category, deletedOrder int) error {
	_, err := s.store.IncrementOrderWhere(ctx, cat, store.OrderRange{GT: deletedOrder}, "", -1)
	if err != nil {
		return fmt.Errorf("compact after delete at order %d: %w", deletedOrder, err)
	}
	return nil
}

// Reorder moves the item to newOrder, shifting everything between its
// old and new position by one slot.
//
// The shift runs before the moved item's own write and uses the old
// bounds; once the item's order changed it would match its own shift
// filter, so the bulk update also excludes the moved id outright. A
// concurrent reader between the two writes sees the moved item still at
// its old order while a shifted neighbor already occupies that value: a
// duplicate at the old position and a gap at the new one.
func (s *Sequencer) Reorder(ctx context.Context, cat datatypes.Category, id string, newOrder int) error {
	item, err := s.store.FindByID(ctx, cat, id)
	if err != nil {
		return err
	}
	old := item.Order
	if old == newOrder {
		return nil
	}

	n, err := s.store.CountByFilter(ctx, cat, store.Filter{})
	if err != nil {
		return fmt.Errorf("count items for reorder: %w", err)
	}
	if newOrder < 1 || newOrder > int(n) {
		return fmt.Errorf("requested order %d outside [1,%d]: %w", newOrder, n, ErrOrderOutOfRange)
	}

	var rng store.OrderRange
	var delta int
	if newOrder > old {
		// Moving later: everything in (old, newOrder] slides down.
		rng = store.OrderRange{GT: old, LTE: newOrder}
		delta = -1
	} else {
		// Moving earlier: everything in [newOrder, old) slides up.
		rng = store.OrderRange{GTE: newOrder, LT: old}
		delta = 1
	}

	shifted, err := s.store.IncrementOrderWhere(ctx, cat, rng, id, delta)
	if err != nil {
		return fmt.Errorf("shift range for reorder: %w", err)
	}

	if err := s.store.SetOrder(ctx, cat, id, newOrder); err != nil {
		// The range already shifted; the moved item still carries its
		// old order, leaving the density invariant violated until a
		// later write repairs it.
		s.logger.Error("reorder committed shift but failed to move item",
			"category", cat, "id", id, "old", old, "new", newOrder, "shifted", shifted, "error", err)
		return fmt.Errorf("set order after shift: %w", err)
	}

	s.logger.Debug("item reordered",
		"category", cat, "id", id, "old", old, "new", newOrder, "shifted", shifted)
	return nil
}
