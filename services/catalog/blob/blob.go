// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package blob defines the image storage contract. The catalog service
// stores item info images in an external object store and keeps only the
// {externalId, url} pair on the item document.
package blob

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound indicates no object exists under the given key.
var ErrNotFound = errors.New("blob not found")

// Object is the result of a successful upload.
type Object struct {
	// Key is the store-scoped identifier used for later overwrite or
	// delete.
	Key string
	// URL is the public address of the uploaded object.
	URL string
}

// Store uploads and deletes image blobs.
//
// Upload with an empty key creates a new object under a generated key;
// a non-empty key overwrites the existing object in place, so replacing
// an item's image never needs a separate delete.
type Store interface {
	Upload(ctx context.Context, key string, contentType string, data []byte) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	nextKey int
	objects map[string][]byte

	// UploadErr and DeleteErr, when set, fail the corresponding call.
	UploadErr error
	DeleteErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(ctx context.Context, key string, contentType string, data []byte) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UploadErr != nil {
		return nil, s.UploadErr
	}
	if key == "" {
		s.nextKey++
		key = fmt.Sprintf("blob-%d", s.nextKey)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	s.objects[key] = copied
	return &Object{Key: key, URL: "memory://" + key}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.objects[key]; !ok {
		return ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

// Len reports the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Has reports whether an object exists under key.
func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

var _ Store = (*MemoryStore)(nil)
