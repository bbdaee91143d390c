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

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/store"
)

// PriceRanges manages the singleton price-range settings record.
type PriceRanges struct {
	store  store.PriceRangeStore
	logger *logging.Logger
}

// NewPriceRanges wires a PriceRanges service.
func NewPriceRanges(st store.PriceRangeStore, logger *logging.Logger) *PriceRanges {
	return &PriceRanges{store: st, logger: logger}
}

// Get returns the settings record, creating it with the legacy defaults
// on first access. created is true when this call materialized the
// record, which the HTTP layer reports as 201.
func (p *PriceRanges) Get(ctx context.Context) (pr *datatypes.PriceRange, created bool, err error) {
	pr, err = p.store.Get(ctx)
	if err == nil {
		return pr, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	def := datatypes.DefaultPriceRange()
	pr, err = p.store.InsertPriceRange(ctx, &def)
	if err != nil {
		return nil, false, err
	}
	p.logger.Info("price range record created with defaults")
	return pr, true, nil
}

// Upsert merges the request into the stored record, creating it first if
// needed. Absent fields keep their stored values; created reports
// whether this call materialized the record.
func (p *PriceRanges) Upsert(ctx context.Context, req *datatypes.PriceRangeRequest) (pr *datatypes.PriceRange, created bool, err error) {
	pr, created, err = p.Get(ctx)
	if err != nil {
		return nil, false, err
	}

	if req.Barrels != nil {
		pr.Barrels = *req.Barrels
	}
	if req.Portables != nil {
		pr.Portables = *req.Portables
	}
	if req.Tubs != nil {
		pr.Tubs = *req.Tubs
	}

	updated, err := p.store.Update(ctx, pr)
	if err != nil {
		return nil, false, err
	}
	p.logger.Info("price range updated")
	return updated, created, nil
}
