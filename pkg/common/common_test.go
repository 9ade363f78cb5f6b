package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "peoplenet/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name   string
		params PaginationParams
		want   []int
		next   bool
	}{
		{"first page", PaginationParams{Page: 1, PageSize: 2}, []int{1, 2}, true},
		{"last page", PaginationParams{Page: 3, PageSize: 2}, []int{5}, false},
		{"past the end", PaginationParams{Page: 9, PageSize: 2}, []int{}, false},
		{"defaults", PaginationParams{}, []int{1, 2, 3, 4, 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, info := Paginate(items, tt.params)
			assert.Equal(t, tt.want, page)
			assert.Equal(t, tt.next, info.HasNext)
			assert.Equal(t, 5, info.Total)
		})
	}
}

func TestExtractPaginationParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/people?page=2&page_size=9999", nil)
	p := ExtractPaginationParams(r)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)

	r = httptest.NewRequest(http.MethodGet, "/people?page=-1", nil)
	assert.Equal(t, 1, ExtractPaginationParams(r).Page)
}

func TestParseJSONBody(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	rec := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alice"}`))
	require.NoError(t, ParseJSONBody(rec, r, &v))
	assert.Equal(t, "Alice", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nmae":"typo"}`))
	assert.True(t, pkgerrors.IsValidation(ParseJSONBody(rec, r, &v)))
}

func TestUserIDContext(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	id, ok := GetUserID(WithUserID(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestRespondJSON(t *testing.T) {
	t.Run("success envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RespondJSON(rec, http.StatusCreated, map[string]string{"id": `a"b`})

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"success":true,"data":{"id":"a\"b"}}`, rec.Body.String())
	})

	t.Run("unencodable data becomes a 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RespondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"type":"INTERNAL"`)
	})
}
