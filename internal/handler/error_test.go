package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techtrend/emporium/internal/domain"
)

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, errorEnvelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodPost, "/api/cart/items", nil), err)

	var body errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "product missing",
			err:        domain.NotFound("cart.add_item", "product", "7f1c"),
			wantStatus: http.StatusNotFound,
			wantCode:   domain.ENOTFOUND,
			wantMsg:    "product not found: 7f1c",
		},
		{
			name:       "insufficient stock",
			err:        domain.Errorf(domain.EINVALID, "cart.add_item", "only %d in stock", 2),
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.EINVALID,
			wantMsg:    "only 2 in stock",
		},
		{
			name:       "not the review author",
			err:        domain.Forbidden("review.update", "You can only edit your own reviews"),
			wantStatus: http.StatusForbidden,
			wantCode:   domain.EFORBIDDEN,
		},
		{
			name:       "duplicate category",
			err:        fmt.Errorf("create: %w", domain.ErrCategoryExists),
			wantStatus: http.StatusConflict,
			wantCode:   domain.ECONFLICT,
		},
		{
			name:       "fakestore down",
			err:        domain.Unavailable(errors.New("dial tcp: i/o timeout"), "sync.products", "FakeStore is unreachable"),
			wantStatus: http.StatusBadGateway,
			wantCode:   domain.EUNAVAILABLE,
			wantMsg:    "FakeStore is unreachable",
		},
		{
			name:       "internal hides detail",
			err:        domain.Internal(errors.New("dial tcp 10.0.0.5:5432"), "order.place", "failed to connect to 10.0.0.5"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   domain.EINTERNAL,
			wantMsg:    "An internal error occurred. Please try again later.",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   domain.EINTERNAL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := respond(t, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Error.Message)
			}
			assert.Nil(t, body.Error.Fields)
		})
	}
}

func TestErrorResponse_ValidationFields(t *testing.T) {
	err := domain.NewValidationError("product.create", "title", "is required")
	err = domain.AddFieldError(err, "price", "must be greater than 0")

	rec, body := respond(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.EINVALID, body.Error.Code)
	assert.Equal(t, "Validation failed", body.Error.Message)
	assert.Equal(t, map[string]string{
		"title": "is required",
		"price": "must be greater than 0",
	}, body.Error.Fields)
}

func TestNotFoundResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundResponse(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"not_found","message":"The requested resource was not found"}}`, rec.Body.String())
}

func TestCountErrorResponse(t *testing.T) {
	err := domain.Internal(errors.New("insert product: connection reset"), "catalogsync.products", "failed to create product")

	rec := httptest.NewRecorder()
	CountErrorResponse(rec, httptest.NewRequest(http.MethodPost, "/api/products/sync-fakestore", nil), 7, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"count":7,"error":{"code":"internal","message":"An internal error occurred. Please try again later."}}`, rec.Body.String())
}
