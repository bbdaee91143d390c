// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the catalog domain models and the validated
// request types accepted by the HTTP layer.
package datatypes

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category identifies one of the three parallel product catalogs. Every
// category has its own collection and its own ordering namespace; order
// values never cross categories.
type Category string

const (
	CategoryBarrels   Category = "barrels"
	CategoryPortables Category = "portables"
	CategoryTubs      Category = "tubs"
)

// Categories returns all known categories in route order.
func Categories() []Category {
	return []Category{CategoryBarrels, CategoryPortables, CategoryTubs}
}

// ParseCategory validates a category name from a route or config value.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryBarrels, CategoryPortables, CategoryTubs:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Collection returns the Mongo collection name for the category.
func (c Category) Collection() string { return string(c) }

// Attachment references an uploaded image in the external blob store.
type Attachment struct {
	ExternalID string `bson:"externalId" json:"externalId"`
	URL        string `bson:"url" json:"url"`
}

// BuyLink is a named purchase link with a price.
type BuyLink struct {
	Name  string  `bson:"name,omitempty" json:"name,omitempty"`
	Price float64 `bson:"price,omitempty" json:"price,omitempty"`
	Link  string  `bson:"link,omitempty" json:"link,omitempty"`
}

// Item is one catalog entry. Order is maintained exclusively by the
// sequencer: for a category holding N items the order values are exactly
// {1..N}. Everything besides ID, Order, Enabled and InfoImage is opaque
// to the ordering subsystem.
type Item struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Order        int                `bson:"order" json:"order"`
	Enabled      bool               `bson:"enabled" json:"enabled"`
	InfoImage    *Attachment        `bson:"infoImage,omitempty" json:"infoImage,omitempty"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	BuyLink1     *BuyLink           `bson:"buyLink1,omitempty" json:"buyLink1,omitempty"`
	BuyLink2     *BuyLink           `bson:"buyLink2,omitempty" json:"buyLink2,omitempty"`
	Overview     string             `bson:"overview,omitempty" json:"overview,omitempty"`
	Review       string             `bson:"review,omitempty" json:"review,omitempty"`
	Pros         string             `bson:"pros,omitempty" json:"pros,omitempty"`
	Cons         string             `bson:"cons,omitempty" json:"cons,omitempty"`
	PromoInfo    string             `bson:"promoInfo,omitempty" json:"promoInfo,omitempty"`
	Rating       float64            `bson:"rating,omitempty" json:"rating,omitempty"`
	DeliveryTime string             `bson:"deliveryTime,omitempty" json:"deliveryTime,omitempty"`
	Dimensions   string             `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Terms        string             `bson:"terms,omitempty" json:"terms,omitempty"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
}

// ItemPage is the list response shape. TotalOffers and TotalPages are
// computed from the unfiltered category count even when the page itself
// only shows enabled items; the legacy deployment behaves this way and
// the frontend depends on it.
type ItemPage struct {
	Offers      []Item `json:"offers"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalOffers int    `json:"totalOffers"`
}
