package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoexpress/pedidos_api/internal/models"
)

type mercadoriaListResponse struct {
	Data []models.Merchandise `json:"data"`
	Meta struct {
		Page       int   `json:"page"`
		Size       int   `json:"size"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"total_pages"`
		HasPrev    bool  `json:"has_prev"`
		HasNext    bool  `json:"has_next"`
	} `json:"meta"`
}

func TestGetMercadoriasPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 12; i++ {
		env.createMerchandise(t, fmt.Sprintf("Item %02d", i), float64(i))
	}

	c, rec := env.jsonContext(t, http.MethodGet, "/mercadoria?page=1&size=5", nil)
	require.NoError(t, env.mercadoria.GetMercadorias(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var first mercadoriaListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Len(t, first.Data, 5)
	assert.Equal(t, "Item 01", first.Data[0].Name)
	assert.Equal(t, 1, first.Meta.Page)
	assert.Equal(t, 5, first.Meta.Size)
	assert.Equal(t, int64(12), first.Meta.Total)
	assert.Equal(t, int64(3), first.Meta.TotalPages)
	assert.False(t, first.Meta.HasPrev)
	assert.True(t, first.Meta.HasNext)

	c, rec = env.jsonContext(t, http.MethodGet, "/mercadoria?page=3&size=5", nil)
	require.NoError(t, env.mercadoria.GetMercadorias(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var last mercadoriaListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &last))
	require.Len(t, last.Data, 2)
	assert.True(t, last.Meta.HasPrev)
	assert.False(t, last.Meta.HasNext)
}

func TestGetMercadoriasDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.createMerchandise(t, "Pizza Margherita", 49.9)

	c, rec := env.jsonContext(t, http.MethodGet, "/mercadoria", nil)
	require.NoError(t, env.mercadoria.GetMercadorias(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp mercadoriaListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestCreateMercadoria(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonContext(t, http.MethodPost, "/mercadoria", map[string]any{
		"nome":  "P",
		"preco": -1,
	})
	require.NoError(t, env.mercadoria.CreateMercadoria(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Details, "nome")
	assert.Contains(t, body.Details, "descricao")
	assert.Contains(t, body.Details, "preco")

	c, rec = env.jsonContext(t, http.MethodPost, "/mercadoria", map[string]any{
		"nome":      "Pizza Margherita",
		"descricao": "Molho de tomate, mussarela e manjericao",
		"preco":     49.9,
	})
	require.NoError(t, env.mercadoria.CreateMercadoria(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.Merchandise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.NotZero(t, item.ID)
	assert.Equal(t, "Pizza Margherita", item.Name)

	var stored models.Merchandise
	require.NoError(t, env.db.First(&stored, item.ID).Error)
	assert.Equal(t, 49.9, stored.Price)
}

func TestCreateMercadoriaIndexesDocument(t *testing.T) {
	env := newTestEnv(t)

	var gotPath string
	var gotDoc models.Merchandise
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		if r.Method == http.MethodPut {
			gotPath = r.URL.Path
			data, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.NoError(t, json.Unmarshal(data, &gotDoc))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":"created"}`)
	}))
	defer srv.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	env.mercadoria.ES = es

	c, rec := env.jsonContext(t, http.MethodPost, "/mercadoria", map[string]any{
		"nome":      "Pizza Margherita",
		"descricao": "Molho de tomate, mussarela e manjericao",
		"preco":     49.9,
	})
	require.NoError(t, env.mercadoria.CreateMercadoria(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.Merchandise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "/mercadoria/_doc/"+strconv.Itoa(item.ID), gotPath)
	assert.Equal(t, "Pizza Margherita", gotDoc.Name)
}

func TestDeleteMercadoria(t *testing.T) {
	env := newTestEnv(t)
	item := env.createMerchandise(t, "Pizza Margherita", 49.9)

	c, rec := env.jsonContext(t, http.MethodDelete, "/mercadoria/abc", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, env.mercadoria.DeleteMercadoria(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = env.jsonContext(t, http.MethodDelete, "/mercadoria/99999", nil)
	c.SetParamNames("id")
	c.SetParamValues("99999")
	require.NoError(t, env.mercadoria.DeleteMercadoria(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = env.jsonContext(t, http.MethodDelete, "/mercadoria/"+strconv.Itoa(item.ID), nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(item.ID))
	require.NoError(t, env.mercadoria.DeleteMercadoria(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.Merchandise{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
