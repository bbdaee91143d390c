// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
)

// MongoStore implements ItemStore on a MongoDB database with one
// collection per category. Single-document writes and UpdateMany give
// the atomicity the sequencer relies on; no multi-document transactions
// are used.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps an already-connected database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, NewMongoStore(client.Database(dbName)), nil
}

func (s *MongoStore) coll(cat datatypes.Category) *mongo.Collection {
	return s.db.Collection(cat.Collection())
}

func (f Filter) toBSON() bson.M {
	if f.EnabledOnly {
		return bson.M{"enabled": true}
	}
	return bson.M{}
}

func (r OrderRange) toBSON() bson.M {
	cond := bson.M{}
	if r.GT != 0 {
		cond["$gt"] = r.GT
	}
	if r.GTE != 0 {
		cond["$gte"] = r.GTE
	}
	if r.LT != 0 {
		cond["$lt"] = r.LT
	}
	if r.LTE != 0 {
		cond["$lte"] = r.LTE
	}
	return cond
}

// wrapErr classifies driver failures as ErrUnavailable so callers never
// have to inspect raw mongo errors.
func wrapErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id can never match a stored document.
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func (s *MongoStore) FindByFilter(ctx context.Context, cat datatypes.Category, filter Filter, opts ListOptions) ([]datatypes.Item, error) {
	findOpts := options.Find()
	if opts.SortByOrder {
		findOpts.SetSort(bson.D{{Key: "order", Value: 1}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(opts.Offset)
	}

	cur, err := s.coll(cat).Find(ctx, filter.toBSON(), findOpts)
	if err != nil {
		return nil, wrapErr("find items", err)
	}
	defer cur.Close(ctx)

	var items []datatypes.Item
	if err := cur.All(ctx, &items); err != nil {
		return nil, wrapErr("decode items", err)
	}
	return items, nil
}

func (s *MongoStore) CountByFilter(ctx context.Context, cat datatypes.Category, filter Filter) (int64, error) {
	n, err := s.coll(cat).CountDocuments(ctx, filter.toBSON())
	if err != nil {
		return 0, wrapErr("count items", err)
	}
	return n, nil
}

func (s *MongoStore) FindByID(ctx context.Context, cat datatypes.Category, id string) (*datatypes.Item, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var item datatypes.Item
	err = s.coll(cat).FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("find item", err)
	}
	return &item, nil
}

func (s *MongoStore) Insert(ctx context.Context, cat datatypes.Category, item *datatypes.Item) (*datatypes.Item, error) {
	res, err := s.coll(cat).InsertOne(ctx, item)
	if err != nil {
		return nil, wrapErr("insert item", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}
	return item, nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, cat datatypes.Category, id string, item *datatypes.Item) (*datatypes.Item, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	item.ID = oid

	after := options.After
	var updated datatypes.Item
	err = s.coll(cat).FindOneAndReplace(ctx, bson.M{"_id": oid}, item,
		options.FindOneAndReplace().SetReturnDocument(after)).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("update item", err)
	}
	return &updated, nil
}

func (s *MongoStore) SetOrder(ctx context.Context, cat datatypes.Category, id string, order int) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll(cat).UpdateByID(ctx, oid, bson.M{"$set": bson.M{"order": order}})
	if err != nil {
		return wrapErr("set order", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, cat datatypes.Category, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll(cat).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapErr("delete item", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) IncrementOrderWhere(ctx context.Context, cat datatypes.Category, rng OrderRange, excludeID string, delta int) (int64, error) {
	filter := bson.M{"order": rng.toBSON()}
	if excludeID != "" {
		oid, err := parseID(excludeID)
		if err != nil {
			return 0, err
		}
		filter["_id"] = bson.M{"$ne": oid}
	}
	res, err := s.coll(cat).UpdateMany(ctx, filter, bson.M{"$inc": bson.M{"order": delta}})
	if err != nil {
		return 0, wrapErr("shift order", err)
	}
	return res.ModifiedCount, nil
}

var _ ItemStore = (*MongoStore)(nil)
