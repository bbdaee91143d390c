// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/auth"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/pkg/logging"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/blob"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/datatypes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/routes"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/sequencer"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/service"
	"github.com/muneeb-orbiqon/icebods-be-orbiqon/services/catalog/store"
)

const testJWTKey = "handler-test-key"

type apiFixture struct {
	router *gin.Engine
	token  string
	blobs  *blob.MemoryStore
	store  *store.MemoryStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.Default()

	st := store.NewMemoryStore()
	blobs := blob.NewMemoryStore()
	seq := sequencer.New(st, logger)
	provider, err := auth.NewJWTProvider(testJWTKey)
	require.NoError(t, err)

	router := gin.New()
	routes.SetupRoutes(router, routes.Deps{
		Catalog:     service.NewCatalog(st, blobs, seq, nil, logger),
		PriceRanges: service.NewPriceRanges(store.NewMemoryPriceRangeStore(), logger),
		Users:       service.NewUsers(store.NewMemoryUserStore(), provider, logger),
		Auth:        provider,
		Logger:      logger,
	})

	token, err := provider.Issue("test-admin")
	require.NoError(t, err)
	return &apiFixture{router: router, token: token, blobs: blobs, store: st}
}

func (f *apiFixture) do(t *testing.T, method, path string, body []byte, contentType string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		req.Header.Set("x-auth-token", f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) doWithToken(t *testing.T, method, path string, body []byte, contentType, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("x-auth-token", token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) createJSON(t *testing.T, cat string, name string) datatypes.Item {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"name":      name,
		"promoInfo": "DEAL",
		"buyLink1":  map[string]any{"name": "shop", "link": "https://example.com", "price": 100},
	})
	require.NoError(t, err)
	rec := f.do(t, http.MethodPost, "/api/"+cat, body, "application/json", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var item datatypes.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	return item
}

func multipartItemForm(t *testing.T, fields map[string]string, imageName, imageType string, imageData []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if imageName != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="infoImage"; filename=%q`, imageName))
		hdr.Set("Content-Type", imageType)
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(imageData)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func TestCreateRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/barrels", []byte(`{}`), "application/json", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndGetItem(t *testing.T) {
	f := newAPIFixture(t)
	item := f.createJSON(t, "barrels", "first barrel")
	assert.Equal(t, 1, item.Order)

	rec := f.do(t, http.MethodGet, "/api/barrels/"+item.ID.Hex(), nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var got datatypes.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "first barrel", got.Name)
}

func TestCreateMultipartWithImage(t *testing.T) {
	f := newAPIFixture(t)
	buyLink, _ := json.Marshal(map[string]any{"name": "shop", "link": "https://example.com", "price": 250})
	body, contentType := multipartItemForm(t, map[string]string{
		"name":      "pictured tub",
		"promoInfo": "HOT",
		"buyLink1":  string(buyLink),
		"rating":    "4.5",
	}, "tub.png", "image/png", []byte("pixels"))

	rec := f.do(t, http.MethodPost, "/api/tubs", body, contentType, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var item datatypes.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	require.NotNil(t, item.InfoImage)
	assert.True(t, f.blobs.Has(item.InfoImage.ExternalID))
	assert.Equal(t, 4.5, item.Rating)
}

func TestCreateRejectsBadImageType(t *testing.T) {
	f := newAPIFixture(t)
	buyLink, _ := json.Marshal(map[string]any{"name": "shop", "link": "https://example.com", "price": 250})
	body, contentType := multipartItemForm(t, map[string]string{
		"name":      "gif tub",
		"promoInfo": "HOT",
		"buyLink1":  string(buyLink),
	}, "tub.gif", "image/gif", []byte("gif"))

	rec := f.do(t, http.MethodPost, "/api/tubs", body, contentType, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListItemsPagination(t *testing.T) {
	f := newAPIFixture(t)
	for i := 1; i <= 12; i++ {
		f.createJSON(t, "portables", fmt.Sprintf("item-%d", i))
	}

	rec := f.do(t, http.MethodGet, "/api/portables?pageNumber=2&pageSize=10", nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var page datatypes.ItemPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Offers, 2)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 12, page.TotalOffers)
}

func TestListItemsRejectsBadPagination(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/api/portables?pageNumber=0&pageSize=10", nil, "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateItem(t *testing.T) {
	f := newAPIFixture(t)
	item := f.createJSON(t, "barrels", "before")
	f.createJSON(t, "barrels", "other")

	body := []byte(`{"overview":"after","order":50}`)
	rec := f.do(t, http.MethodPut, "/api/barrels/"+item.ID.Hex(), body, "application/json", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated datatypes.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "after", updated.Overview)
	assert.Equal(t, "before", updated.Name)
	assert.Equal(t, 1, updated.Order, "edit never moves the item")
}

func TestDeleteItemCompacts(t *testing.T) {
	f := newAPIFixture(t)
	first := f.createJSON(t, "barrels", "one")
	second := f.createJSON(t, "barrels", "two")
	third := f.createJSON(t, "barrels", "three")

	rec := f.do(t, http.MethodDelete, "/api/barrels/"+second.ID.Hex(), nil, "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	// Survivors are renumbered 1..2.
	for id, want := range map[string]int{first.ID.Hex(): 1, third.ID.Hex(): 2} {
		item, err := f.store.FindByID(context.Background(), datatypes.CategoryBarrels, id)
		require.NoError(t, err)
		assert.Equal(t, want, item.Order)
	}
}

func TestReorderEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	var items []datatypes.Item
	for i := 1; i <= 5; i++ {
		items = append(items, f.createJSON(t, "tubs", fmt.Sprintf("tub-%d", i)))
	}

	body, _ := json.Marshal(map[string]any{"id": items[1].ID.Hex(), "order": 4})
	rec := f.do(t, http.MethodPost, "/api/tubs/reorder", body, "application/json", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success", rec.Body.String())

	moved, err := f.store.FindByID(context.Background(), datatypes.CategoryTubs, items[1].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 4, moved.Order)

	t.Run("out of range is a 400", func(t *testing.T) {
		body, _ := json.Marshal(map[string]any{"id": items[0].ID.Hex(), "order": 9})
		rec := f.do(t, http.MethodPost, "/api/tubs/reorder", body, "application/json", true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetUnknownItemIs404(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/api/barrels/64ffffffffffffffffffffff", nil, "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	t.Run("malformed id is also a 404", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/barrels/not-a-hex-id", nil, "", false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "healthy"))
}
