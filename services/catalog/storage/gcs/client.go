// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package gcs implements blob.Store on a Google Cloud Storage bucket.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/blob"
)

// Client uploads item images to a single GCS bucket. Objects are public
// read; the URL handed back is the plain storage.googleapis.com address
// the frontend embeds directly.
type Client struct {
	storageClient *storage.Client
	BucketName    string
}

// NewClient creates a Client using the service account key at saKeyPath,
// or application default credentials when saKeyPath is empty.
func NewClient(ctx context.Context, bucketName, saKeyPath string) (*Client, error) {
	var opts []option.ClientOption
	if saKeyPath != "" {
		if _, err := os.Stat(saKeyPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", saKeyPath)
		}
		opts = append(opts, option.WithCredentialsFile(saKeyPath))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &Client{
		storageClient: storageClient,
		BucketName:    bucketName,
	}, nil
}

// Upload writes data under key, generating a fresh UUID key when none is
// given. Writing to an existing key overwrites the object, which is how
// image replacement works.
func (c *Client) Upload(ctx context.Context, key string, contentType string, data []byte) (*blob.Object, error) {
	if key == "" {
		key = uuid.NewString()
	}

	obj := c.storageClient.Bucket(c.BucketName).Object(key)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to write GCS object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close GCS writer for %s: %w", key, err)
	}

	return &blob.Object{
		Key: key,
		URL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.BucketName, key),
	}, nil
}

// Delete removes the object under key. A missing object maps to
// blob.ErrNotFound so callers can treat it as already gone.
func (c *Client) Delete(ctx context.Context, key string) error {
	err := c.storageClient.Bucket(c.BucketName).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return blob.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete GCS object %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying storage client.
func (c *Client) Close() error {
	return c.storageClient.Close()
}

var _ blob.Store = (*Client)(nil)
