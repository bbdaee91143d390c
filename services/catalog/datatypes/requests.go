// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// catalogValidate is the validator instance for catalog request types.
var catalogValidate *validator.Validate

func init() {
	catalogValidate = validator.New()
}

// ValidationError reports malformed or missing request input. The HTTP
// layer maps it to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// wrapFieldError converts a validator error into a ValidationError naming
// the first failing field, mirroring the one-message-per-response behavior
// of the legacy API.
func wrapFieldError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return NewValidationError("field %q failed validation on %q", f.Field(), f.Tag())
	}
	return NewValidationError("%v", err)
}

// BuyLinkInput is the JSON-encoded purchase link carried in a multipart
// form field.
type BuyLinkInput struct {
	Name  string   `json:"name" validate:"omitempty,max=255"`
	Price *float64 `json:"price"`
	Link  string   `json:"link" validate:"omitempty,max=2048"`
}

// ItemRequest carries the descriptive fields of a create or edit call.
// Field presence rules differ between the two modes: create requires
// name, promo text and a complete first buy link; edit relaxes every
// required rule so a partial update can carry a single field.
type ItemRequest struct {
	BuyLink1     *BuyLinkInput `json:"buyLink1"`
	BuyLink2     *BuyLinkInput `json:"buyLink2"`
	Name         string        `json:"name" validate:"omitempty,max=255"`
	Overview     string        `json:"overview"`
	Review       string        `json:"review"`
	Pros         string        `json:"pros"`
	Cons         string        `json:"cons"`
	PromoInfo    string        `json:"promoInfo" validate:"omitempty,max=20"`
	Rating       *float64      `json:"rating" validate:"omitempty,gte=0,lte=5"`
	DeliveryTime string        `json:"deliveryTime"`
	Dimensions   string        `json:"dimensions"`
	Terms        string        `json:"terms"`
	Enabled      *bool         `json:"enabled"`

	// Order is honored on create only; update never touches order.
	// Zero means auto-assign.
	Order int `json:"order" validate:"omitempty,gte=1"`
}

// Validate checks tag rules and, for create mode, the required fields.
func (r *ItemRequest) Validate(edit bool) error {
	if err := catalogValidate.Struct(r); err != nil {
		return wrapFieldError(err)
	}
	if r.BuyLink1 != nil {
		if err := catalogValidate.Struct(r.BuyLink1); err != nil {
			return wrapFieldError(err)
		}
	}
	if edit {
		return nil
	}
	if r.Name == "" {
		return NewValidationError("name is required")
	}
	if r.PromoInfo == "" {
		return NewValidationError("promoInfo is required")
	}
	if r.BuyLink1 == nil {
		return NewValidationError("buyLink1 is required")
	}
	if r.BuyLink1.Name == "" || r.BuyLink1.Link == "" || r.BuyLink1.Price == nil {
		return NewValidationError("buyLink1 requires name, link and price")
	}
	return nil
}

// ListQuery carries the pagination parameters of a list call.
type ListQuery struct {
	PageNumber int  `form:"pageNumber" validate:"required,gte=1"`
	PageSize   int  `form:"pageSize" validate:"required,gte=1"`
	Disabled   bool `form:"disabled"`
}

// Validate checks the pagination rules.
func (q *ListQuery) Validate() error {
	if err := catalogValidate.Struct(q); err != nil {
		return wrapFieldError(err)
	}
	return nil
}

// ReorderRequest moves one item to a new ordinal position.
type ReorderRequest struct {
	ID    string `json:"id" validate:"required"`
	Order int    `json:"order" validate:"required,gte=1"`
}

// Validate checks the reorder rules. Range checking against the category
// size happens in the sequencer, which knows the item count.
func (r *ReorderRequest) Validate() error {
	if err := catalogValidate.Struct(r); err != nil {
		return wrapFieldError(err)
	}
	return nil
}

// allowedImageTypes are the attachment content types the API accepts.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// ValidateImageType rejects attachment uploads that are not PNG or JPEG.
func ValidateImageType(contentType string) error {
	if !allowedImageTypes[contentType] {
		return NewValidationError("unsupported image type %q", contentType)
	}
	return nil
}
