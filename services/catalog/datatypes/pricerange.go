// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "go.mongodb.org/mongo-driver/bson/primitive"

// PriceRange is the singleton settings record holding one free-text price
// range per category. At most one document exists per deployment.
type PriceRange struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Portables string             `bson:"portables" json:"portables"`
	Barrels   string             `bson:"barrels" json:"barrels"`
	Tubs      string             `bson:"tubs" json:"tubs"`
}

// DefaultPriceRange returns the record created when none exists yet.
// The defaults match the legacy schema defaults.
func DefaultPriceRange() PriceRange {
	return PriceRange{
		Portables: "70-100",
		Barrels:   "500-1500",
		Tubs:      "1000-20,000",
	}
}

// PriceRangeRequest carries a partial update of the settings record.
// Absent fields keep their stored values.
type PriceRangeRequest struct {
	Barrels   *string `json:"barrels"`
	Portables *string `json:"portables"`
	Tubs      *string `json:"tubs"`
}
