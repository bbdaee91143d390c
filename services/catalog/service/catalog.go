// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package service implements the catalog business operations on top of
// the store, blob and sequencer layers. Handlers stay thin; everything
// with a decision in it lives here.
package service

import (
	"context"
	"fmt"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/blob"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/cleanup"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/sequencer"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/store"
)

// AttachmentError wraps a blob-store failure during create or update.
// It surfaces as a 500 and, because the upload runs before the item
// write, guarantees no half-created item exists when it fires.
type AttachmentError struct {
	Err error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment upload failed: %v", e.Err)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// ImageUpload is a decoded multipart image ready for the blob store.
type ImageUpload struct {
	ContentType string
	Data        []byte
}

// MetricsRecorder receives domain-level counters. The observability
// package provides the Prometheus implementation.
type MetricsRecorder interface {
	ObserveItemWrite(cat datatypes.Category, operation string)
	ObserveOrderShift()
}

// nopMetrics is used until WithMetrics is called.
type nopMetrics struct{}

func (nopMetrics) ObserveItemWrite(datatypes.Category, string) {}
func (nopMetrics) ObserveOrderShift()                          {}

// Catalog runs the item operations for all three categories.
type Catalog struct {
	store   store.ItemStore
	blobs   blob.Store
	seq     *sequencer.Sequencer
	journal *cleanup.Journal
	logger  *logging.Logger
	metrics MetricsRecorder
}

// NewCatalog wires a Catalog. journal may be nil, in which case failed
// blob deletions are logged and dropped instead of retried.
func NewCatalog(st store.ItemStore, blobs blob.Store, seq *sequencer.Sequencer, journal *cleanup.Journal, logger *logging.Logger) *Catalog {
	return &Catalog{store: st, blobs: blobs, seq: seq, journal: journal, logger: logger, metrics: nopMetrics{}}
}

// WithMetrics attaches a metrics recorder and returns the catalog for
// chaining during wiring.
func (c *Catalog) WithMetrics(m MetricsRecorder) *Catalog {
	if m != nil {
		c.metrics = m
	}
	return c
}

// List returns one page of items sorted by order.
//
// The page itself honors the enabled filter, but TotalOffers and
// TotalPages always come from the unfiltered category count. That is
// legacy behavior the frontend paginates against, kept on purpose.
func (c *Catalog) List(ctx context.Context, cat datatypes.Category, q datatypes.ListQuery) (*datatypes.ItemPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	filter := store.Filter{EnabledOnly: !q.Disabled}
	items, err := c.store.FindByFilter(ctx, cat, filter, store.ListOptions{
		SortByOrder: true,
		Limit:       int64(q.PageSize),
		Offset:      int64(q.PageNumber-1) * int64(q.PageSize),
	})
	if err != nil {
		return nil, err
	}

	total, err := c.store.CountByFilter(ctx, cat, store.Filter{})
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize != 0 {
		totalPages++
	}

	if items == nil {
		items = []datatypes.Item{}
	}
	return &datatypes.ItemPage{
		Offers:      items,
		CurrentPage: q.PageNumber,
		TotalPages:  totalPages,
		TotalOffers: int(total),
	}, nil
}

// Get returns one item by id.
func (c *Catalog) Get(ctx context.Context, cat datatypes.Category, id string) (*datatypes.Item, error) {
	return c.store.FindByID(ctx, cat, id)
}

// Create validates, uploads the image if given, assigns an order and
// inserts the item. The upload happens before any item write: an upload
// failure returns an AttachmentError and the catalog is untouched. If
// the insert itself fails after a successful upload, the uploaded blob
// is journaled for deletion so it does not leak.
func (c *Catalog) Create(ctx context.Context, cat datatypes.Category, req *datatypes.ItemRequest, image *ImageUpload) (*datatypes.Item, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}

	var attachment *datatypes.Attachment
	if image != nil {
		if err := datatypes.ValidateImageType(image.ContentType); err != nil {
			return nil, err
		}
		obj, err := c.blobs.Upload(ctx, "", image.ContentType, image.Data)
		if err != nil {
			return nil, &AttachmentError{Err: err}
		}
		attachment = &datatypes.Attachment{ExternalID: obj.Key, URL: obj.URL}
	}

	order, err := c.seq.AssignOnCreate(ctx, cat, req.Order)
	if err != nil {
		c.orphanBlob(attachment)
		return nil, err
	}

	item := &datatypes.Item{
		Order:     order,
		Enabled:   true,
		InfoImage: attachment,
		Category:  string(cat),
	}
	applyRequest(item, req)

	created, err := c.store.Insert(ctx, cat, item)
	if err != nil {
		c.orphanBlob(attachment)
		return nil, err
	}
	c.metrics.ObserveItemWrite(cat, "create")
	c.logger.Info("item created", "category", cat, "id", created.ID.Hex(), "order", created.Order)
	return created, nil
}

// Update merges the request into the stored item and replaces it. The
// order field is never touched here; moving an item goes through
// ReorderItem. A new image overwrites the existing blob in place under
// the same external id, so the stored URL stays valid.
func (c *Catalog) Update(ctx context.Context, cat datatypes.Category, id string, req *datatypes.ItemRequest, image *ImageUpload) (*datatypes.Item, error) {
	if err := req.Validate(true); err != nil {
		return nil, err
	}

	item, err := c.store.FindByID(ctx, cat, id)
	if err != nil {
		return nil, err
	}

	if image != nil {
		if err := datatypes.ValidateImageType(image.ContentType); err != nil {
			return nil, err
		}
		key := ""
		if item.InfoImage != nil {
			key = item.InfoImage.ExternalID
		}
		obj, err := c.blobs.Upload(ctx, key, image.ContentType, image.Data)
		if err != nil {
			return nil, &AttachmentError{Err: err}
		}
		item.InfoImage = &datatypes.Attachment{ExternalID: obj.Key, URL: obj.URL}
	}

	applyRequest(item, req)

	updated, err := c.store.UpdateByID(ctx, cat, id, item)
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveItemWrite(cat, "update")
	c.logger.Info("item updated", "category", cat, "id", id)
	return updated, nil
}

// Delete removes the item, deletes its image best-effort and compacts
// the order sequence. A blob-store failure never blocks the delete: the
// key goes to the cleanup journal instead. A compaction failure does
// not surface either — the delete already committed, so the call still
// reports success and the category keeps a gap until a later write
// repairs it.
func (c *Catalog) Delete(ctx context.Context, cat datatypes.Category, id string) error {
	item, err := c.store.FindByID(ctx, cat, id)
	if err != nil {
		return err
	}

	if err := c.store.DeleteByID(ctx, cat, id); err != nil {
		return err
	}

	c.orphanBlob(item.InfoImage)

	if err := c.seq.CompactOnDelete(ctx, cat, item.Order); err != nil {
		c.logger.Error("order compaction failed after delete",
			"category", cat, "id", id, "order", item.Order, "error", err)
	} else {
		c.metrics.ObserveOrderShift()
	}
	c.metrics.ObserveItemWrite(cat, "delete")
	c.logger.Info("item deleted", "category", cat, "id", id, "order", item.Order)
	return nil
}

// ReorderItem moves one item to a new position.
func (c *Catalog) ReorderItem(ctx context.Context, cat datatypes.Category, req *datatypes.ReorderRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := c.seq.Reorder(ctx, cat, req.ID, req.Order); err != nil {
		return err
	}
	c.metrics.ObserveItemWrite(cat, "reorder")
	c.metrics.ObserveOrderShift()
	return nil
}

// orphanBlob deletes an attachment's blob, falling back to the journal
// when the store is unreachable.
func (c *Catalog) orphanBlob(attachment *datatypes.Attachment) {
	if attachment == nil {
		return
	}
	// Blob cleanup must not inherit a cancelled request context.
	err := c.blobs.Delete(context.Background(), attachment.ExternalID)
	if err == nil {
		return
	}
	c.logger.Warn("blob deletion failed", "key", attachment.ExternalID, "error", err)
	if c.journal == nil {
		return
	}
	if err := c.journal.Enqueue(attachment.ExternalID); err != nil {
		c.logger.Error("failed to journal blob deletion", "key", attachment.ExternalID, "error", err)
	}
}

// applyRequest copies the request fields onto the item. Strings use
// non-empty-wins merge and pointers use presence, mirroring the legacy
// partial-update semantics where absent fields keep their values.
func applyRequest(item *datatypes.Item, req *datatypes.ItemRequest) {
	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Overview != "" {
		item.Overview = req.Overview
	}
	if req.Review != "" {
		item.Review = req.Review
	}
	if req.Pros != "" {
		item.Pros = req.Pros
	}
	if req.Cons != "" {
		item.Cons = req.Cons
	}
	if req.PromoInfo != "" {
		item.PromoInfo = req.PromoInfo
	}
	if req.DeliveryTime != "" {
		item.DeliveryTime = req.DeliveryTime
	}
	if req.Dimensions != "" {
		item.Dimensions = req.Dimensions
	}
	if req.Terms != "" {
		item.Terms = req.Terms
	}
	if req.Rating != nil {
		item.Rating = *req.Rating
	}
	if req.Enabled != nil {
		item.Enabled = *req.Enabled
	}
	if req.BuyLink1 != nil {
		item.BuyLink1 = toBuyLink(req.BuyLink1)
	}
	if req.BuyLink2 != nil {
		item.BuyLink2 = toBuyLink(req.BuyLink2)
	}
}

func toBuyLink(in *datatypes.BuyLinkInput) *datatypes.BuyLink {
	out := &datatypes.BuyLink{Name: in.Name, Link: in.Link}
	if in.Price != nil {
		out.Price = *in.Price
	}
	return out
}
