// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a registered administrator account. PasswordHash is the bcrypt
// hash of the registration password and is never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
}

// RegisterUserRequest carries a registration call.
type RegisterUserRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email,min=3,max=255"`
	Password string `json:"password" validate:"required,min=8,max=255"`
}

// Validate checks the registration rules.
func (r *RegisterUserRequest) Validate() error {
	if err := catalogValidate.Struct(r); err != nil {
		return wrapFieldError(err)
	}
	return nil
}
