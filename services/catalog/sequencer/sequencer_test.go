// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sequencer

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/store"
)

func newTestSequencer(t *testing.T) (*Sequencer, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return New(st, logging.Default()), st
}

// seedItems inserts n items with orders 1..n and returns their ids in
// order.
func seedItems(t *testing.T, st *store.MemoryStore, cat datatypes.Category, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		item, err := st.Insert(context.Background(), cat, &datatypes.Item{Order: i, Enabled: true})
		require.NoError(t, err)
		ids = append(ids, item.ID.Hex())
	}
	return ids
}

// ordersByID reads back the current order of every seeded id.
func ordersByID(t *testing.T, st *store.MemoryStore, cat datatypes.Category, ids []string) map[string]int {
	t.Helper()
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		item, err := st.FindByID(context.Background(), cat, id)
		require.NoError(t, err)
		out[id] = item.Order
	}
	return out
}

// requireDense asserts the order values of the given ids are exactly
// {1..len(ids)}.
func requireDense(t *testing.T, st *store.MemoryStore, cat datatypes.Category, ids []string) {
	t.Helper()
	orders := make([]int, 0, len(ids))
	for _, o := range ordersByID(t, st, cat, ids) {
		orders = append(orders, o)
	}
	sort.Ints(orders)
	for i, o := range orders {
		require.Equal(t, i+1, o, "order values must be dense 1..N, got %v", orders)
	}
}

func TestAssignOnCreate(t *testing.T) {
	ctx := context.Background()
	cat := datatypes.CategoryBarrels

	t.Run("empty category starts at one", func(t *testing.T) {
		seq, _ := newTestSequencer(t)
		order, err := seq.AssignOnCreate(ctx, cat, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, order)
	})

	t.Run("appends after existing items", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		seedItems(t, st, cat, 1)
		order, err := seq.AssignOnCreate(ctx, cat, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, order)
	})

	t.Run("explicit order passes through", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		seedItems(t, st, cat, 5)
		order, err := seq.AssignOnCreate(ctx, cat, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, order)
	})

	t.Run("count ignores enabled filter", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		_, err := st.Insert(ctx, cat, &datatypes.Item{Order: 1, Enabled: false})
		require.NoError(t, err)
		_, err = st.Insert(ctx, cat, &datatypes.Item{Order: 2, Enabled: true})
		require.NoError(t, err)
		order, err := seq.AssignOnCreate(ctx, cat, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, order)
	})
}

func TestCompactOnDelete(t *testing.T) {
	ctx := context.Background()
	cat := datatypes.CategoryPortables

	t.Run("closes the gap", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		ids := seedItems(t, st, cat, 5)

		// Delete the item at order 2, then compact.
		require.NoError(t, st.DeleteByID(ctx, cat, ids[1]))
		require.NoError(t, seq.CompactOnDelete(ctx, cat, 2))

		remaining := append([]string{ids[0]}, ids[2:]...)
		requireDense(t, st, cat, remaining)
		orders := ordersByID(t, st, cat, remaining)
		assert.Equal(t, 1, orders[ids[0]])
		assert.Equal(t, 2, orders[ids[2]])
		assert.Equal(t, 3, orders[ids[3]])
		assert.Equal(t, 4, orders[ids[4]])
	})

	t.Run("deleting the last item shifts nothing", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		ids := seedItems(t, st, cat, 3)

		require.NoError(t, st.DeleteByID(ctx, cat, ids[2]))
		require.NoError(t, seq.CompactOnDelete(ctx, cat, 3))

		orders := ordersByID(t, st, cat, ids[:2])
		assert.Equal(t, 1, orders[ids[0]])
		assert.Equal(t, 2, orders[ids[1]])
	})
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	cat := datatypes.CategoryTubs

	t.Run("move later shifts intervening items down", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		ids := seedItems(t, st, cat, 5)

		// Move item 2 to position 4: items at 3 and 4 slide to 2 and 3.
		require.NoError(t, seq.Reorder(ctx, cat, ids[1], 4))

		orders := ordersByID(t, st, cat, ids)
		assert.Equal(t, 1, orders[ids[0]])
		assert.Equal(t, 4, orders[ids[1]])
		assert.Equal(t, 2, orders[ids[2]])
		assert.Equal(t, 3, orders[ids[3]])
		assert.Equal(t, 5, orders[ids[4]])
		requireDense(t, st, cat, ids)
	})

	t.Run("move earlier shifts intervening items up", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		ids := seedItems(t, st, cat, 5)

		// Move item 4 to position 2: items at 2 and 3 slide to 3 and 4.
		require.NoError(t, seq.Reorder(ctx, cat, ids[3], 2))

		orders := ordersByID(t, st, cat, ids)
		assert.Equal(t, 1, orders[ids[0]])
		assert.Equal(t, 3, orders[ids[1]])
		assert.Equal(t, 4, orders[ids[2]])
		assert.Equal(t, 2, orders[ids[3]])
		assert.Equal(t, 5, orders[ids[4]])
		requireDense(t, st, cat, ids)
	})

	t.Run("move to first and last positions", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		ids := seedItems(t, st, cat, 4)

		require.NoError(t, seq.Reorder(ctx, cat, ids[3], 1))
		requireDense(t, st, cat, ids)
		orders := ordersByID(t, st, cat, ids)
		assert.Equal(t, 1, orders[ids[3]])

		require.NoError(t, seq.Reorder(ctx, cat, ids[3], 4))
		requireDense(t, st, cat, ids)
		orders = ordersByID(t, st, cat, ids)
		assert.Equal(t, 4, orders[ids[3]])
		assert.Equal(t, 1, orders[ids[0]])
		assert.Equal(t, 2, orders[ids[1]])
		assert.Equal(t, 3, orders[ids[2]])
	})

	t.Run("same position is a no-op", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		ids := seedItems(t, st, cat, 3)

		require.NoError(t, seq.Reorder(ctx, cat, ids[1], 2))

		orders := ordersByID(t, st, cat, ids)
		assert.Equal(t, 1, orders[ids[0]])
		assert.Equal(t, 2, orders[ids[1]])
		assert.Equal(t, 3, orders[ids[2]])
	})

	t.Run("rejects orders outside the range", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		ids := seedItems(t, st, cat, 3)

		err := seq.Reorder(ctx, cat, ids[0], 4)
		require.ErrorIs(t, err, ErrOrderOutOfRange)

		err = seq.Reorder(ctx, cat, ids[2], 0)
		require.ErrorIs(t, err, ErrOrderOutOfRange)

		// Nothing moved.
		orders := ordersByID(t, st, cat, ids)
		assert.Equal(t, 1, orders[ids[0]])
		assert.Equal(t, 2, orders[ids[1]])
		assert.Equal(t, 3, orders[ids[2]])
	})

	t.Run("unknown item", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		seedItems(t, st, cat, 2)

		err := seq.Reorder(ctx, cat, "64ffffffffffffffffffffff", 1)
		require.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("categories do not interfere", func(t *testing.T) {
		seq, st := newTestSequencer(t)
		ids := seedItems(t, st, cat, 3)
		otherIDs := seedItems(t, st, datatypes.CategoryBarrels, 3)

		require.NoError(t, seq.Reorder(ctx, cat, ids[0], 3))

		orders := ordersByID(t, st, datatypes.CategoryBarrels, otherIDs)
		assert.Equal(t, 1, orders[otherIDs[0]])
		assert.Equal(t, 2, orders[otherIDs[1]])
		assert.Equal(t, 3, orders[otherIDs[2]])
	})
}

// TestLifecycleKeepsDensity walks a create/delete/reorder sequence and
// checks the {1..N} invariant holds after every step.
func TestLifecycleKeepsDensity(t *testing.T) {
	ctx := context.Background()
	cat := datatypes.CategoryBarrels
	seq, st := newTestSequencer(t)

	var ids []string
	for i := 0; i < 6; i++ {
		order, err := seq.AssignOnCreate(ctx, cat, 0)
		require.NoError(t, err)
		item, err := st.Insert(ctx, cat, &datatypes.Item{Order: order, Enabled: true})
		require.NoError(t, err)
		ids = append(ids, item.ID.Hex())
		requireDense(t, st, cat, ids)
	}

	// Delete from the middle and compact.
	victim, err := st.FindByID(ctx, cat, ids[2])
	require.NoError(t, err)
	require.NoError(t, st.DeleteByID(ctx, cat, ids[2]))
	require.NoError(t, seq.CompactOnDelete(ctx, cat, victim.Order))
	ids = append(ids[:2], ids[3:]...)
	requireDense(t, st, cat, ids)

	// A few moves in both directions.
	require.NoError(t, seq.Reorder(ctx, cat, ids[0], 5))
	requireDense(t, st, cat, ids)
	require.NoError(t, seq.Reorder(ctx, cat, ids[4], 1))
	requireDense(t, st, cat, ids)
	require.NoError(t, seq.Reorder(ctx, cat, ids[2], 3))
	requireDense(t, st, cat, ids)
}
